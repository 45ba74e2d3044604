package safe

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"gophermart.com/pkg/logger"
)

// Go runs fn in a goroutine and converts panics into error logs.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger.Log != nil {
					logger.Error(context.Background(), "goroutine panic recovered",
						zap.Any("panic", r),
						zap.String("stack", stack),
					)
				} else {
					fmt.Printf("goroutine panic: %v\nstack: %s\n", r, stack)
				}
			}
		}()

		fn()
	}()
}

// GoCtx is Go with a context threaded through, so trace fields survive into
// the recovered-panic log line.
func GoCtx(ctx context.Context, fn func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger.Log != nil {
					logger.Error(ctx, "goroutine panic recovered",
						zap.Any("panic", r),
						zap.String("stack", stack),
					)
				} else {
					fmt.Printf("goroutine panic: %v\nstack: %s\n", r, stack)
				}
			}
		}()

		fn(ctx)
	}()
}
