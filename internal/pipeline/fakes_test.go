package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
	"github.com/couchcryptid/hidden-gems-service/internal/pipeline"
	"github.com/couchcryptid/hidden-gems-service/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// --- collaborators ---

type fakeLister struct {
	mu    sync.Mutex
	gems  []domain.RawGem
	err   error
	calls int
}

func (f *fakeLister) ListGems(context.Context) ([]domain.RawGem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.gems, f.err
}

func (f *fakeLister) set(gems []domain.RawGem, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gems, f.err = gems, err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCreator struct {
	mu       sync.Mutex
	reply    domain.RawGem
	err      error
	received []domain.NewGem
	block    chan struct{}
}

func (f *fakeCreator) CreateGem(_ context.Context, g domain.NewGem) (domain.RawGem, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, g)
	return f.reply, f.err
}

func (f *fakeCreator) calls() []domain.NewGem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.NewGem(nil), f.received...)
}

type fakeUploader struct {
	url   string
	err   error
	calls atomic.Int32
}

func (f *fakeUploader) Upload(context.Context, domain.ImageFile) (string, error) {
	f.calls.Add(1)
	return f.url, f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.GemEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e domain.GemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingNotifier struct {
	mu   sync.Mutex
	errs []error
}

func (n *recordingNotifier) Notify(_ context.Context, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errs)
}

// --- resolvers ---

// gatedPhotos answers from urls by place name. A name with a gate holds its
// reply until the gate is closed.
type gatedPhotos struct {
	mu    sync.Mutex
	urls  map[string]string
	gates map[string]chan struct{}
	names []string
}

func newGatedPhotos(urls map[string]string) *gatedPhotos {
	return &gatedPhotos{urls: urls, gates: make(map[string]chan struct{})}
}

func (g *gatedPhotos) gate(name string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[name] = ch
	return ch
}

func (g *gatedPhotos) ResolvePhoto(ctx context.Context, name string, _, _ *float64) *domain.Task[string] {
	g.mu.Lock()
	g.names = append(g.names, name)
	gate := g.gates[name]
	url := g.urls[name]
	g.mu.Unlock()

	return domain.StartTask(ctx, func(context.Context) domain.Lookup[string] {
		if gate != nil {
			<-gate
		}
		if url == "" {
			return domain.NotFound[string]()
		}
		return domain.Found(url)
	})
}

func (g *gatedPhotos) requested() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.names...)
}

type fakeGeocoder struct {
	result  domain.Lookup[domain.GeocodeResult]
	queries atomic.Int32
}

func (f *fakeGeocoder) ResolveAddress(context.Context, string) *domain.Task[domain.GeocodeResult] {
	f.queries.Add(1)
	return domain.Resolved(f.result)
}

type denyAll struct{}

func (denyAll) IsAuthenticated(context.Context) bool { return false }

var errBackend = errors.New("backend unavailable")

// --- harness ---

type harness struct {
	store     *store.GemStore
	photos    *gatedPhotos
	events    *fakePublisher
	notifier  *recordingNotifier
	metrics   *observability.Metrics
	enricher  *pipeline.Enricher
	lister    *fakeLister
	creator   *fakeCreator
	uploader  *fakeUploader
	geocoder  *fakeGeocoder
	coord     *pipeline.Coordinator
	submitter *pipeline.Submitter
}

func newHarness(photoURLs map[string]string) *harness {
	h := &harness{
		store:    store.New(),
		photos:   newGatedPhotos(photoURLs),
		events:   &fakePublisher{},
		notifier: &recordingNotifier{},
		metrics:  observability.NewMetricsForTesting(),
		lister:   &fakeLister{},
		creator:  &fakeCreator{},
		uploader: &fakeUploader{url: "https://cdn/uploads/1-abc.jpg"},
		geocoder: &fakeGeocoder{result: domain.NotFound[domain.GeocodeResult]()},
	}
	h.enricher = pipeline.NewEnricher(h.store, h.photos, h.events, 4, h.metrics, discardLogger())
	h.coord = pipeline.NewCoordinator(h.lister, h.store, h.enricher, h.notifier, h.metrics, discardLogger())
	h.submitter = h.newSubmitter(nil)
	return h
}

func (h *harness) newSubmitter(auth pipeline.Authenticator) *pipeline.Submitter {
	if auth == nil {
		auth = allowAll{}
	}
	return pipeline.NewSubmitter(pipeline.SubmitterDeps{
		Auth:     auth,
		Uploader: h.uploader,
		Geocoder: h.geocoder,
		Creator:  h.creator,
		Store:    h.store,
		Enricher: h.enricher,
		Events:   h.events,
		Notifier: h.notifier,
	}, 1024, h.metrics, discardLogger())
}

type allowAll struct{}

func (allowAll) IsAuthenticated(context.Context) bool { return true }
