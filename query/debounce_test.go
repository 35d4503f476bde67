package query

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Calls within the window supersede each other: the wrapped function fires
// exactly once, after the window elapses, with the arguments of the last call.
func TestDebounceTrailingEdgeLastCallWins(t *testing.T) {
	var mu sync.Mutex
	var calls [][]any

	debounced := Debounce(120*time.Millisecond, func(args ...any) {
		mu.Lock()
		calls = append(calls, args)
		mu.Unlock()
	})

	debounced("a")
	time.Sleep(40 * time.Millisecond)
	debounced("b")
	time.Sleep(40 * time.Millisecond)
	debounced("c", 3)

	// Still inside the window of the last call: nothing fired yet
	// (trailing edge, not leading edge).
	mu.Lock()
	assert.Empty(t, calls)
	mu.Unlock()

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"c", 3}, calls[0])
}

func TestDebounceFiresAgainAfterQuietPeriod(t *testing.T) {
	var mu sync.Mutex
	var got []any

	debounced := Debounce(30*time.Millisecond, func(args ...any) {
		mu.Lock()
		got = append(got, args[0])
		mu.Unlock()
	})

	debounced("first")
	time.Sleep(80 * time.Millisecond)
	debounced("second")
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []any{"first", "second"}, got)
}
