// Package audit implements the Audit Feed: best-effort structured
// logging of every handled operation, a live activity stream for the
// Admin UI, and the Prometheus counters shared with the webhook
// delivery metrics.
package audit

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Entry is one audit record, keyed as the spec requires:
// (tenant_id, principal_id, operation, success, details, error?).
type Entry struct {
	TenantID    string    `json:"tenant_id"`
	PrincipalID string    `json:"principal_id"`
	Operation   string    `json:"operation"`
	Success     bool      `json:"success"`
	Details     string    `json:"details,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

const ringBufferSize = 512

// Feed is the process-wide audit sink. Log failures (a full subscriber
// channel, a marshal error) never propagate to the caller — audit is
// explicitly best-effort (§4.8).
type Feed struct {
	log        logr.Logger
	operations *prometheus.CounterVec

	mu          sync.Mutex
	subscribers map[chan Entry]struct{}
	ring        []Entry
}

func NewFeed(log logr.Logger, registerer prometheus.Registerer) *Feed {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adcp_operations_total",
		Help: "AdCP skill operations handled, by tenant/operation/outcome.",
	}, []string{"tenant_id", "operation", "outcome"})
	if registerer != nil {
		registerer.MustRegister(counter)
	}
	return &Feed{
		log:         log.WithName("audit"),
		operations:  counter,
		subscribers: make(map[chan Entry]struct{}),
	}
}

// Record emits one audit entry: a structured log line, a metrics
// increment, and a best-effort push to any live subscribers.
func (f *Feed) Record(e Entry) {
	defer func() { recover() }() // audit must never fail the request

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	outcome := "success"
	if !e.Success {
		outcome = "failure"
	}
	f.operations.WithLabelValues(e.TenantID, e.Operation, outcome).Inc()

	logFn := f.log.Info
	kvs := []any{
		"tenant_id", e.TenantID, "principal_id", e.PrincipalID,
		"operation", e.Operation, "success", e.Success, "details", e.Details,
	}
	if e.Error != "" {
		kvs = append(kvs, "error", e.Error)
	}
	logFn("audit event", kvs...)

	f.mu.Lock()
	f.ring = append(f.ring, e)
	if len(f.ring) > ringBufferSize {
		f.ring = f.ring[len(f.ring)-ringBufferSize:]
	}
	for ch := range f.subscribers {
		select {
		case ch <- e:
		default:
			// slow subscriber drops frames rather than back-pressuring
			// the audit write.
		}
	}
	f.mu.Unlock()
}

// Subscribe registers a channel for live activity streaming
// (GET /debug/activity). Callers must call Unsubscribe when done.
func (f *Feed) Subscribe() chan Entry {
	ch := make(chan Entry, 32)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *Feed) Unsubscribe(ch chan Entry) {
	f.mu.Lock()
	delete(f.subscribers, ch)
	f.mu.Unlock()
	close(ch)
}

// MarshalEntry is a convenience for SSE framing.
func MarshalEntry(e Entry) ([]byte, error) {
	return json.Marshal(e)
}
