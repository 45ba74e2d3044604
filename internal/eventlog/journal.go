package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gophermart.com/internal/market"
	"gophermart.com/pkg/recordlog"
)

// Journal is the file-backed event log: one append-only segment per
// (account, stream) handle under dir, each record a JSON envelope framed by
// pkg/recordlog. Appends are flushed before sinks see them, so everything a
// subscriber observes is already durable.
type Journal struct {
	mu      sync.Mutex
	dir     string
	sinks   []Sink
	handles map[handleKey]*handle
}

type handleKey struct {
	account uint64
	stream  string
}

func NewJournal(dir string, sinks ...Sink) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Journal{
		dir:     dir,
		sinks:   sinks,
		handles: make(map[handleKey]*handle),
	}, nil
}

// Open returns the appender for (account, stream), creating the segment on
// first use and resuming the sequence from the last intact record. Open is
// idempotent: the same handle comes back for the same key.
func (j *Journal) Open(account market.AccountID, stream string) (market.Appender, error) {
	key := handleKey{account: uint64(account), stream: stream}

	j.mu.Lock()
	defer j.mu.Unlock()
	if h, ok := j.handles[key]; ok {
		return h, nil
	}

	path := j.segmentPath(uint64(account), stream)

	// a crashed append may leave a torn tail record; everything before it
	// replays cleanly and the sequence resumes after the last good envelope
	var lastSeq uint64
	st, err := recordlog.Replay(path, recordlog.ReplayOptions{AllowTruncatedTail: true}, func(payload []byte) error {
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return err
		}
		if env.Seq > lastSeq {
			lastSeq = env.Seq
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("eventlog: replay %s: %w", path, err)
	}
	if st.TruncatedTail {
		if err := recordlog.TruncateTo(path, st.LastGoodOffset); err != nil {
			return nil, fmt.Errorf("eventlog: repair %s: %w", path, err)
		}
	}

	w, err := recordlog.OpenWrite(path, 0)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}

	h := &handle{journal: j, w: w, seq: lastSeq, account: uint64(account), stream: stream}
	j.handles[key] = h
	return h, nil
}

// Replay streams every envelope of one handle's segment in append order.
func (j *Journal) Replay(account market.AccountID, stream string, fn func(env Envelope) error) error {
	path := j.segmentPath(uint64(account), stream)
	_, err := recordlog.Replay(path, recordlog.ReplayOptions{AllowTruncatedTail: true}, func(payload []byte) error {
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return err
		}
		return fn(env)
	})
	return err
}

// Close flushes and closes every open segment.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var firstErr error
	for key, h := range j.handles {
		if err := h.close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(j.handles, key)
	}
	return firstErr
}

func (j *Journal) segmentPath(account uint64, stream string) string {
	return filepath.Join(j.dir, fmt.Sprintf("%d.%s.log", account, stream))
}

type handle struct {
	mu      sync.Mutex
	journal *Journal
	w       *recordlog.Writer
	seq     uint64
	account uint64
	stream  string
}

// Append journals the event and fans it out. Ordering per handle is
// guaranteed by the handle mutex; the sequence only advances after the
// record is durable.
func (h *handle) Append(ctx context.Context, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventlog: encode event: %w", err)
	}

	h.mu.Lock()
	env := Envelope{
		ID:      uuid.NewString(),
		Seq:     h.seq + 1,
		Account: h.account,
		Stream:  h.stream,
		At:      time.Now().UnixNano(),
		Event:   body,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("eventlog: encode envelope: %w", err)
	}
	if err := h.w.Append(payload); err != nil {
		h.mu.Unlock()
		return err
	}
	if err := h.w.Flush(); err != nil {
		h.mu.Unlock()
		return err
	}
	h.seq = env.Seq
	h.mu.Unlock()

	for _, s := range h.journal.sinks {
		s.Publish(ctx, env)
	}
	return nil
}

func (h *handle) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w.Close()
}
