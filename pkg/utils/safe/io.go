package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/riskflow/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. A nil closer is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// CloseAll closes every closer in reverse order
func CloseAll(ctx context.Context, closers ...io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		Close(ctx, closers[i])
	}
}

// Write writes data to w and logs a failure. Used for command output where
// a broken pipe must not turn a committed operation into an error.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err), slog.Int("bytes", len(data)))
	}
}
