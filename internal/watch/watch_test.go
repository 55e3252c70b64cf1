package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherTriggersDebouncedRebuild(t *testing.T) {
	dir := t.TempDir()

	rebuilt := make(chan struct{}, 1)
	rebuild := func(_ context.Context) error {
		select {
		case rebuilt <- struct{}{}:
		default:
		}
		return nil
	}

	w, err := NewSourceWatcher([]string{dir}, 20*time.Millisecond, 0, rebuild)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.h"), []byte("x"), 0o644))

	select {
	case <-rebuilt:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuild was not triggered")
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()

	var count int
	rebuilt := make(chan struct{}, 16)
	rebuild := func(_ context.Context) error {
		rebuilt <- struct{}{}
		return nil
	}

	w, err := NewSourceWatcher([]string{dir}, 100*time.Millisecond, 0, rebuild)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	// A burst of writes inside one debounce window yields a single rebuild.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.h"), []byte{byte(i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	select {
	case <-rebuilt:
		count++
	case <-deadline:
		t.Fatal("rebuild was not triggered")
	}

	// Allow a settling period; no further rebuild should arrive.
	select {
	case <-rebuilt:
		count++
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, 1, count)
}

func TestRebuildsNeverOverlap(t *testing.T) {
	var mu sync.Mutex
	active, maxActive, total := 0, 0, 0
	rebuild := func(_ context.Context) error {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		time.Sleep(300 * time.Millisecond)

		mu.Lock()
		active--
		total++
		mu.Unlock()
		return nil
	}

	w, err := NewSourceWatcher([]string{t.TempDir()}, 20*time.Millisecond, 0, rebuild)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	// Second change lands while the first rebuild is still running; it must
	// queue a follow-up rebuild, not start a concurrent one.
	w.triggerChange()
	time.Sleep(150 * time.Millisecond)
	w.triggerChange()

	deadline := time.Now().Add(3 * time.Second)
	for {
		mu.Lock()
		done := total
		mu.Unlock()
		if done >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, total)
	assert.Equal(t, 1, maxActive)
}

func TestWatcherMissingDir(t *testing.T) {
	w, err := NewSourceWatcher([]string{filepath.Join(t.TempDir(), "nope")}, time.Millisecond, 0, func(context.Context) error { return nil })
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	// Missing directories are logged and skipped, not fatal.
	assert.NoError(t, w.Start(context.Background()))
}
