package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
	"github.com/couchcryptid/hidden-gems-service/internal/store"
)

// SubmitterDeps are the collaborators of a Submitter. Uploader, Geocoder and
// Events may be nil: image uploads then fail, addresses stay unresolved, and
// no events are emitted.
type SubmitterDeps struct {
	Auth     Authenticator
	Uploader ImageUploader
	Geocoder domain.GeocodeResolver
	Creator  GemCreator
	Store    *store.GemStore
	Enricher *Enricher
	Events   EventPublisher
	Notifier Notifier
}

// Submitter runs new-gem submissions: upload, geocode fallback, create,
// prepend, then photo enrichment.
type Submitter struct {
	deps          SubmitterDeps
	maxImageBytes int64
	inFlight      atomic.Int32
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewSubmitter creates a Submitter rejecting images above maxImageBytes.
func NewSubmitter(deps SubmitterDeps, maxImageBytes int64, metrics *observability.Metrics, logger *slog.Logger) *Submitter {
	return &Submitter{deps: deps, maxImageBytes: maxImageBytes, metrics: metrics, logger: logger}
}

// Submitting reports whether any submission is in progress.
func (s *Submitter) Submitting() bool {
	return s.inFlight.Load() > 0
}

// Submit persists sub and prepends the stored gem. Every step before the
// create call is a gate: on failure nothing is persisted or merged, one
// notification is sent, and the returned error wraps one of the domain
// submission errors.
func (s *Submitter) Submit(ctx context.Context, sub domain.Submission) (domain.Gem, error) {
	s.inFlight.Add(1)
	s.metrics.Submitting.Inc()
	defer func() {
		s.inFlight.Add(-1)
		s.metrics.Submitting.Dec()
	}()

	g, err := s.submit(ctx, sub)
	if err != nil {
		s.metrics.Submissions.WithLabelValues(submissionOutcome(err)).Inc()
		s.deps.Notifier.Notify(ctx, err)
		return domain.Gem{}, err
	}
	s.metrics.Submissions.WithLabelValues("success").Inc()
	return g, nil
}

func (s *Submitter) submit(ctx context.Context, sub domain.Submission) (domain.Gem, error) {
	if !s.deps.Auth.IsAuthenticated(ctx) {
		return domain.Gem{}, domain.ErrAuthRequired
	}

	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return domain.Gem{}, domain.ErrNameRequired
	}
	if sub.Image != nil && s.maxImageBytes > 0 && int64(len(sub.Image.Data)) > s.maxImageBytes {
		return domain.Gem{}, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrImageTooLarge, len(sub.Image.Data), s.maxImageBytes)
	}

	imageURL, err := s.upload(ctx, sub.Image)
	if err != nil {
		return domain.Gem{}, err
	}

	payload := domain.NewGem{
		Name:        name,
		Description: strings.TrimSpace(sub.Description),
		Address:     strings.TrimSpace(sub.Address),
	}
	s.resolveCoords(ctx, sub, &payload)
	if imageURL != "" {
		payload.Image = &imageURL
	}

	raw, err := s.deps.Creator.CreateGem(ctx, payload)
	if err != nil {
		return domain.Gem{}, fmt.Errorf("%w: %w", domain.ErrCreateFailed, err)
	}
	g := domain.NormalizeGem(raw)
	if g.ID == "" {
		return domain.Gem{}, fmt.Errorf("%w: created gem has no id", domain.ErrCreateFailed)
	}
	if !g.HasImage() && imageURL != "" {
		g.Image = imageURL
	}

	s.deps.Store.Prepend(g)
	if stored, ok := s.deps.Store.Get(g.ID); ok {
		g = stored
	}
	s.logger.Info("gem submitted", "gem_id", g.ID, "name", g.Name, "has_image", g.HasImage(), "has_coords", g.HasCoords())

	publishEvent(ctx, s.deps.Events, s.logger, domain.EventGemCreated, g)
	if s.deps.Enricher != nil {
		s.deps.Enricher.Enrich(ctx, g)
	}
	return g, nil
}

func (s *Submitter) upload(ctx context.Context, img *domain.ImageFile) (string, error) {
	if img == nil {
		return "", nil
	}
	if s.deps.Uploader == nil {
		return "", fmt.Errorf("%w: image storage is not configured", domain.ErrUploadFailed)
	}
	url, err := s.deps.Uploader.Upload(ctx, *img)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}
	if url == "" {
		return "", fmt.Errorf("%w: storage returned no url", domain.ErrUploadFailed)
	}
	return url, nil
}

// resolveCoords uses explicit coordinates when both parse, else one geocode
// of the address. An unresolved address keeps the raw text and no coordinates.
func (s *Submitter) resolveCoords(ctx context.Context, sub domain.Submission, payload *domain.NewGem) {
	if lat, lng, ok := domain.ParseCoords(sub.Lat, sub.Lng); ok {
		payload.Lat, payload.Lng = &lat, &lng
		return
	}
	if payload.Address == "" || s.deps.Geocoder == nil {
		return
	}

	res, ok := s.deps.Geocoder.ResolveAddress(ctx, payload.Address).Await(ctx).Get()
	if !ok {
		s.logger.Info("address not resolved, submitting without coordinates", "address", payload.Address)
		return
	}
	payload.Address = res.FormattedAddress
	payload.Lat, payload.Lng = &res.Lat, &res.Lng
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "auth_required"
	case errors.Is(err, domain.ErrNameRequired), errors.Is(err, domain.ErrImageTooLarge):
		return "invalid"
	case errors.Is(err, domain.ErrUploadFailed):
		return "upload_failed"
	default:
		return "create_failed"
	}
}
