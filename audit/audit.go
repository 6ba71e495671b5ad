// Package audit captures one immutable record per mutate call: before and
// after HTML, the plan used, timings, and provenance. That is enough to
// replay a mutation offline without re-invoking the engine.
//
// The engine hands each record to a Sink and keeps no history. Sink
// failures are the sink's problem: implementations log and skip rather
// than block the mutated response.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Record is the audit trail of one mutate call. Created once, immutable.
//
// The large payloads (before/after HTML, plan JSON) are excluded from the
// JSONL summary line; file and index sinks store them separately.
type Record struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	URL       string `json:"url"`
	Seed      int    `json:"seed"`

	HTMLBefore string          `json:"-"`
	HTMLAfter  string          `json:"-"`
	Plan       json.RawMessage `json:"-"`

	PlanSource         string         `json:"plan_source"` // cache | similar | palette | fallback
	PlanDurationMS     float64        `json:"plan_duration_ms"`
	MutationDurationMS float64        `json:"mutation_duration_ms"`
	CacheKey           string         `json:"cache_key"`
	DeltaBytes         int            `json:"delta_bytes"`
	PhasesEnabled      []string       `json:"phases_enabled"`
	Metrics            map[string]int `json:"metrics,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Sink receives completed audit records. Implementations must be safe for
// concurrent Write calls and should never block longer than their own I/O.
type Sink interface {
	Write(ctx context.Context, rec *Record) error
}

// MultiSink fans a record out to several sinks. Each sink gets the record
// regardless of earlier failures; the first error is returned.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, rec *Record) error {
	var first error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}
