package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config selects and tunes a WebClient backend.
type Config struct {
	Client Client

	// Timeout bounds a single round-trip. Zero means 30s.
	Timeout time.Duration

	// DisableRedirects makes the nethttp backend return 3xx responses as-is
	// instead of following them.
	DisableRedirects bool

	// CookieJar gives the nethttp backend a jar so cookies are replayed
	// automatically, the way a browser would.
	CookieJar bool

	// ShowBrowser runs the chromedp backend with a visible window.
	ShowBrowser bool

	// IdleAfter is how long the chromedp backend waits with no in-flight
	// requests before it considers a page loaded. Zero means 500ms.
	IdleAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		Client:    ClientNetHTTP,
		Timeout:   30 * time.Second,
		IdleAfter: 500 * time.Millisecond,
	}
}
