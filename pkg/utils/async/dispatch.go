package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aide-lab/mnemo/pkg/utils/logging"
)

// Dispatch runs handler on a fresh goroutine detached from the request
// lifecycle. The request context is replaced with a background context (the
// logger is carried over) so cancellation of the originating request does not
// abort the handler. Errors and panics are logged, never propagated.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		logger := logging.From(bgCtx)

		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger.Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
