package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCompactable struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (r *recordingCompactable) Compact(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	if r.err != nil {
		return 0, r.err
	}
	return 3, nil
}

func (r *recordingCompactable) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cutoffs)
}

func TestRunOnceUsesRetentionCutoff(t *testing.T) {
	store := &recordingCompactable{}
	c := NewRevocationCompactor(store, 7*24*time.Hour, time.Hour, nil)
	now := time.Date(2024, 3, 11, 20, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	n, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, now.Add(-7*24*time.Hour), store.cutoffs[0])
}

func TestRunOnceReportsStoreError(t *testing.T) {
	store := &recordingCompactable{err: errors.New("db down")}
	c := NewRevocationCompactor(store, time.Hour, time.Hour, nil)

	_, err := c.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunStopsWithContext(t *testing.T) {
	store := &recordingCompactable{}
	c := NewRevocationCompactor(store, time.Hour, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("compactor did not stop")
	}
}
