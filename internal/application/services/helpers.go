package services

import (
	"context"
	"time"
)

// dispatch runs a post-commit side effect (notifications) on its own
// goroutine with a detached, bounded context. A panic or failure there
// must never reach the caller: the booking transaction has already
// committed.
func dispatch(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		defer func() {
			_ = recover()
		}()
		fn(ctx)
	}()
}
