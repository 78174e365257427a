package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains the outbox into Kafka. Each tick claims and publishes events
// until the queue is empty; a publish failure parks the event for retry with
// the configured backoff instead of stopping the loop.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	workerID := w.ID
	if workerID == "" {
		workerID = uuid.NewString()
	}
	ticker := time.NewTicker(w.pollInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx, workerID); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context, workerID string) error {
	for {
		doc, err := w.Store.Claim(ctx, workerID)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		w.dispatch(ctx, doc)
	}
}

func (w *Worker) dispatch(ctx context.Context, doc *EventDocument) {
	payload, headers, err := w.envelope(doc)
	if err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.retryAt(doc.Attempts), err.Error())
		return
	}
	if err := w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers); err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.retryAt(doc.Attempts), err.Error())
		return
	}
	_ = w.Store.MarkSent(ctx, doc.ID)
}

// envelope wraps the stored domain payload in a CloudEvents 1.0 JSON
// envelope so downstream consumers get a stable contract.
func (w *Worker) envelope(doc *EventDocument) ([]byte, map[string]string, error) {
	var data map[string]any
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            doc.Name + ".v1",
		"source":          w.eventSource(),
		"time":            doc.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := doc.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps "booking.requested" style names onto the per-aggregate
// stream, e.g. "booking.events.v1".
func (w *Worker) topicFor(name string) string {
	aggregate := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		aggregate = name[:idx]
	}
	return w.TopicPrefix + aggregate + ".events.v1"
}

func (w *Worker) retryAt(attempts int) time.Time {
	if len(w.Backoff) == 0 {
		return time.Now().Add(5 * time.Second)
	}
	if attempts >= len(w.Backoff) {
		attempts = len(w.Backoff) - 1
	}
	return time.Now().Add(w.Backoff[attempts])
}

func (w *Worker) pollInterval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) eventSource() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://staymarket"
}
