package driven

import "context"

// ContextFetcher retrieves the reference text a tool ingests at initialisation.
type ContextFetcher interface {
	// FetchText returns the body found at location as text.
	FetchText(ctx context.Context, location string) (string, error)
}
