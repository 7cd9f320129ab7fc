package webclient

import (
	"context"
)

// WebClient is the transport the test driver and handshake use to talk to
// the application under test.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
