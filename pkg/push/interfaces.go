package push

import "context"

// Dispatcher defines the contract for one end-to-end delivery attempt
// through one provider: resolve credentials, acquire a token where the
// provider requires one, build the wire payload, send, classify.
type Dispatcher interface {
	Send(ctx context.Context, req Request) (*Result, error)
}

// FallbackTokenStore holds the single fallback HMS destination token used
// when a request does not carry one inline.
type FallbackTokenStore interface {
	// Fetch returns the stored token, or "" with a nil error when none is
	// stored. Absence is a missing-fallback condition, not an error.
	Fetch(ctx context.Context) (string, error)

	// Save registers or overwrites the fallback token.
	Save(ctx context.Context, token string) error
}
