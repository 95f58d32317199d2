// Package webclient abstracts page acquisition behind a backend registry so
// the rest of the system never cares whether a page was fetched with plain
// HTTP or rendered in a headless browser.
package webclient

import "context"

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests.
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
