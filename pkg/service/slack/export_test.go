package slack

// Export internal functions for testing
var (
	// BuildBlocks is exported for testing
	BuildBlocks = buildBlocks

	// TruncateToMaxBytes is exported for testing UTF-8 truncation
	TruncateToMaxBytes = truncateToMaxBytes
)
