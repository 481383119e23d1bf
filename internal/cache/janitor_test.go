package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunJanitor_DropsPastRateLimitWindows(t *testing.T) {
	// Arrange
	store, clk := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	for window := 0; window < 500; window++ {
		_, err := store.Increment(ctx, fmt.Sprintf("rate_limit:client:%d", window), time.Minute)
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}
	clk.Advance(time.Second)
	_, err := store.Increment(ctx, "rate_limit:client:500", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 501, store.Len())

	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, store, 5*time.Millisecond)
		close(done)
	}()

	// Act / Assert
	assert.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}

	var count int64
	hit, err := store.Get(context.Background(), "rate_limit:client:500", &count)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStore_IsSweeper(t *testing.T) {
	var s Store = NewMemoryStore()

	_, ok := s.(Sweeper)

	assert.True(t, ok)
}
