package query

import (
	"sync"
	"time"
)

// Debounce wraps fn so that only the last call within each wait window fires,
// with the arguments of that call (trailing edge). Calling again before the
// window elapses restarts it. The returned function is safe for concurrent
// use; fn runs on a timer goroutine.
func Debounce(wait time.Duration, fn func(args ...any)) func(args ...any) {
	var mu sync.Mutex
	var timer *time.Timer

	return func(args ...any) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(wait, func() {
			fn(args...)
		})
	}
}
