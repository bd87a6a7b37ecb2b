package cli

import (
	"context"
	"io"
)

// RunWithIO runs the app with the given stdin and stdout for testing
func RunWithIO(ctx context.Context, r io.Reader, w io.Writer, args []string) error {
	return run(ctx, r, w, args, "test")
}

// IndexConfig is exported for testing
var IndexConfig = getIndexConfig
