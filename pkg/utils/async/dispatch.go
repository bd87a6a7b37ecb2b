package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Dispatch executes a handler function asynchronously in a new goroutine
// It creates a background context and handles errors and panics
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	// Create a new background context but preserve logger
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger := logging.From(bgCtx)
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger := logging.From(bgCtx)
			logger.Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}

// Fanout runs all handlers concurrently and waits for them. Every handler
// runs to completion even if another one fails; the first error is returned.
func Fanout(ctx context.Context, handlers ...func(ctx context.Context) error) error {
	var eg errgroup.Group
	for _, h := range handlers {
		if h == nil {
			continue
		}
		eg.Go(func() error {
			return h(ctx)
		})
	}
	return eg.Wait()
}
