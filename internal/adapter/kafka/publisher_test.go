package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hidden-gems-service/internal/config"
	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testEvent() domain.GemEvent {
	return domain.GemEvent{
		Type:        domain.EventPhotoApplied,
		GemID:       "42",
		Name:        "Sunder Nursery",
		Image:       "https://img/x.jpg",
		SubmittedBy: "priya",
		OccurredAt:  time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent()

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.JSONEq(t, `{
		"type":"gem.photo_applied",
		"gem_id":"42",
		"name":"Sunder Nursery",
		"image":"https://img/x.jpg",
		"submitted_by":"priya",
		"occurred_at":"2025-10-15T09:30:00Z"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("gem.photo_applied"), msg.Headers[0].Value)
	assert.Equal(t, "occurred_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-10-15T09:30:00Z"), msg.Headers[1].Value)
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	metrics := observability.NewMetricsForTesting()
	p := &Publisher{writer: w, metrics: metrics, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("42"), w.msgs[0].Key)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(domain.EventPhotoApplied, "success")), 0)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_StampsOccurredAtFromClock(t *testing.T) {
	t.Cleanup(func() { domain.SetClock(nil) })
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 11, 2, 18, 45, 0, 0, time.UTC)))

	w := &fakeWriter{}
	p := &Publisher{writer: w, metrics: observability.NewMetricsForTesting(), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	g := domain.Gem{ID: "9", Name: "Majnu ka Tilla", SubmittedBy: "arjun"}

	require.NoError(t, p.Publish(context.Background(), domain.NewGemEvent(domain.EventGemCreated, g)))
	require.Len(t, w.msgs, 1)
	require.Len(t, w.msgs[0].Headers, 2)
	assert.Equal(t, "occurred_at", w.msgs[0].Headers[1].Key)
	assert.Equal(t, []byte("2025-11-02T18:45:00Z"), w.msgs[0].Headers[1].Value)
	assert.Contains(t, string(w.msgs[0].Value), `"occurred_at":"2025-11-02T18:45:00Z"`)
}

func TestPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	metrics := observability.NewMetricsForTesting()
	p := &Publisher{writer: w, metrics: metrics, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(domain.EventPhotoApplied, "error")), 0)
}

func TestNewPublisher_FlushesSingleEventsPromptly(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "gems"}
	p := NewPublisher(cfg, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = p.Close() })

	w, ok := p.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "gems", w.Topic)
	assert.IsType(t, &kafkago.Hash{}, w.Balancer)
	assert.Positive(t, w.BatchTimeout)
	assert.LessOrEqual(t, w.BatchTimeout, 50*time.Millisecond)
	assert.False(t, w.Async)
}
