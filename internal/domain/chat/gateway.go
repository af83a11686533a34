package chat

import "context"

// StreamEvent is one element of an incremental completion. Exactly one of
// the three fields is set; Done and Err are terminal.
type StreamEvent struct {
	Text string
	Err  error
	Done bool
}

// CompletionGateway wraps the external language-model service. It holds one
// fixed model configuration for the process lifetime.
type CompletionGateway interface {
	// Complete sends prompt as a single atomic call and returns the full
	// completion text with surrounding whitespace trimmed.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteStream opens an incremental completion. The returned channel
	// yields zero or more non-empty text fragments followed by exactly one
	// terminal event, then closes. The stream is finite and not restartable.
	CompleteStream(ctx context.Context, prompt string) (<-chan StreamEvent, error)
}
