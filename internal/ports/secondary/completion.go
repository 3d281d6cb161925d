package secondary

import "context"

// CompletionClient defines the secondary port for language-model
// completions. Implementations own their retry policy; a returned error
// means the call is exhausted and the operation must fail without partial
// state. Complete is never called while a database transaction is open.
type CompletionClient interface {
	// Complete sends one prompt and returns the model's text response.
	Complete(ctx context.Context, prompt string) (string, error)
}
