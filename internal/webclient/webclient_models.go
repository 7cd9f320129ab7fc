package webclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OptionWaitVisible makes the chromedp backend wait for a CSS selector to be
// visible before reading the page.
const OptionWaitVisible = "wait_visible"

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options contains backend-specific options such as OptionWaitVisible
	Options map[string]string
}

// NewFormRequest builds a POST carrying form as an URL-encoded body.
func NewFormRequest(target string, form url.Values) *Request {
	hdrs := http.Header{}
	hdrs.Set("Content-Type", "application/x-www-form-urlencoded")
	return &Request{
		Method:  http.MethodPost,
		URL:     target,
		Headers: hdrs,
		Body:    []byte(form.Encode()),
	}
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	// FinalURL is the URL that produced this response after redirects.
	FinalURL  string
	FetchedAt time.Time
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SetCookies returns the raw Set-Cookie header values in header order.
func (r *Response) SetCookies() []string {
	if r.Headers == nil {
		return nil
	}
	return r.Headers.Values("Set-Cookie")
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Contains reports whether the body contains s.
func (r *Response) Contains(s string) bool {
	return strings.Contains(string(r.Body), s)
}
