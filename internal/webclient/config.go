package webclient

import "time"

const (
	BackendNetHTTP  = "nethttp"
	BackendChromedp = "chromedp"
)

// Config is everything a backend constructor may need. Kept independent of
// the application config to avoid an import cycle.
type Config struct {
	Backend   string
	Timeout   time.Duration
	UserAgent string

	// Chromedp only: how long the network must stay quiet before a page
	// counts as fully rendered, and whether to show the browser.
	IdleAfter time.Duration
	Headless  bool
}

func DefaultConfig() Config {
	return Config{
		Backend:   BackendNetHTTP,
		Timeout:   30 * time.Second,
		IdleAfter: 2 * time.Second,
		Headless:  true,
	}
}
