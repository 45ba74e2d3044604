package eventlog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gophermart.com/internal/market"
)

type testEvent struct {
	N int `json:"n"`
}

func TestJournalAppendAndReplay(t *testing.T) {
	dir := t.TempDir()
	j, err := NewJournal(dir)
	require.NoError(t, err)
	ctx := context.Background()

	h, err := j.Open(market.AccountID(7), market.StreamListing)
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Append(ctx, testEvent{N: i}))
	}
	require.NoError(t, j.Close())

	var seen []int
	var lastSeq uint64
	j2, err := NewJournal(dir)
	require.NoError(t, err)
	err = j2.Replay(market.AccountID(7), market.StreamListing, func(env Envelope) error {
		require.Equal(t, lastSeq+1, env.Seq)
		require.Equal(t, uint64(7), env.Account)
		require.Equal(t, market.StreamListing, env.Stream)
		require.NotEmpty(t, env.ID)
		lastSeq = env.Seq

		var ev testEvent
		require.NoError(t, json.Unmarshal(env.Event, &ev))
		seen = append(seen, ev.N)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestJournalResumesSequenceAfterReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j, err := NewJournal(dir)
	require.NoError(t, err)
	h, err := j.Open(market.AccountID(7), market.StreamBuying)
	require.NoError(t, err)
	require.NoError(t, h.Append(ctx, testEvent{N: 1}))
	require.NoError(t, h.Append(ctx, testEvent{N: 2}))
	require.NoError(t, j.Close())

	j2, err := NewJournal(dir)
	require.NoError(t, err)
	defer j2.Close()
	h2, err := j2.Open(market.AccountID(7), market.StreamBuying)
	require.NoError(t, err)
	require.NoError(t, h2.Append(ctx, testEvent{N: 3}))

	var seqs []uint64
	require.NoError(t, j2.Replay(market.AccountID(7), market.StreamBuying, func(env Envelope) error {
		seqs = append(seqs, env.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3}, seqs)
}

func TestJournalOpenIsIdempotent(t *testing.T) {
	j, err := NewJournal(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	a, err := j.Open(market.AccountID(1), market.StreamListing)
	require.NoError(t, err)
	b, err := j.Open(market.AccountID(1), market.StreamListing)
	require.NoError(t, err)
	assert.Same(t, a, b)

	// distinct streams get distinct handles
	c, err := j.Open(market.AccountID(1), market.StreamDelisting)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestJournalFansOutToSinks(t *testing.T) {
	bus := NewBus(8)
	j, err := NewJournal(t.TempDir(), bus)
	require.NoError(t, err)
	defer j.Close()

	h, err := j.Open(market.AccountID(3), market.StreamListing)
	require.NoError(t, err)
	require.NoError(t, h.Append(context.Background(), testEvent{N: 42}))

	env := <-bus.C()
	assert.Equal(t, uint64(3), env.Account)
	assert.Equal(t, uint64(1), env.Seq)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus(1)
	ctx := context.Background()

	bus.Publish(ctx, Envelope{Seq: 1})
	bus.Publish(ctx, Envelope{Seq: 2})

	assert.Equal(t, uint64(1), bus.Dropped())
	env := <-bus.C()
	assert.Equal(t, uint64(1), env.Seq)
}

func TestMemLogOrdersEntries(t *testing.T) {
	m := NewMemLog()
	ctx := context.Background()
	h, err := m.Open(market.AccountID(9), market.StreamListing)
	require.NoError(t, err)

	require.NoError(t, h.Append(ctx, testEvent{N: 1}))
	require.NoError(t, h.Append(ctx, testEvent{N: 2}))

	entries := m.Entries(market.AccountID(9), market.StreamListing)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, uint64(2), entries[1].Seq)
}
