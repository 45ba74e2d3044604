// Package eventlog implements the append-only event log collaborator: one
// ordered stream per (account, stream) handle, durably journaled and fanned
// out to in-process and NATS subscribers. The marketplace core only appends;
// indexers and marketplace UIs reconstruct history from the streams.
package eventlog

import (
	"context"
	"encoding/json"
)

// Envelope wraps every appended event with its position and provenance.
// Seq increases by one per handle, so observers can detect gaps.
type Envelope struct {
	ID      string          `json:"id"`
	Seq     uint64          `json:"seq"`
	Account uint64          `json:"account"`
	Stream  string          `json:"stream"`
	At      int64           `json:"at"` // unix nanos
	Event   json.RawMessage `json:"event"`
}

// Sink receives envelopes after they are durably appended. Implementations
// must not block the appender; drop or buffer instead.
type Sink interface {
	Publish(ctx context.Context, env Envelope)
}
