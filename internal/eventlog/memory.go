package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gophermart.com/internal/market"
)

// MemLog keeps streams in memory; the event log for tests and ephemeral
// setups.
type MemLog struct {
	mu      sync.Mutex
	handles map[handleKey]*memHandle
}

func NewMemLog() *MemLog {
	return &MemLog{handles: make(map[handleKey]*memHandle)}
}

func (m *MemLog) Open(account market.AccountID, stream string) (market.Appender, error) {
	key := handleKey{account: uint64(account), stream: stream}
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.handles[key]; ok {
		return h, nil
	}
	h := &memHandle{account: uint64(account), stream: stream}
	m.handles[key] = h
	return h, nil
}

// Entries copies the envelopes appended to one handle so far.
func (m *MemLog) Entries(account market.AccountID, stream string) []Envelope {
	m.mu.Lock()
	h := m.handles[handleKey{account: uint64(account), stream: stream}]
	m.mu.Unlock()
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Envelope, len(h.entries))
	copy(out, h.entries)
	return out
}

type memHandle struct {
	mu      sync.Mutex
	account uint64
	stream  string
	entries []Envelope
}

func (h *memHandle) Append(ctx context.Context, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventlog: encode event: %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Envelope{
		ID:      uuid.NewString(),
		Seq:     uint64(len(h.entries) + 1),
		Account: h.account,
		Stream:  h.stream,
		At:      time.Now().UnixNano(),
		Event:   body,
	})
	return nil
}
