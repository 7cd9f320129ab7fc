// Package antiforgery recovers the cookie/hidden-field token pair a server
// hands out with a rendered form and replays it on the follow-up POST.
package antiforgery

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/raysh454/employeesapp/internal/webclient"
)

var (
	ErrMissingCookie = errors.New("anti-forgery cookie missing")
	ErrMissingToken  = errors.New("anti-forgery token missing")
)

// Pair is the matched cookie token and request token from one response.
type Pair struct {
	FieldValue  string
	CookieValue string
}

// Extractor pulls a Pair out of a response. It holds no mutable state and
// is safe to reuse.
type Extractor struct {
	cfg    Config
	finder TokenFinder
}

type Option func(*Extractor)

// WithTokenFinder replaces the default literal-pattern finder.
func WithTokenFinder(f TokenFinder) Option {
	return func(e *Extractor) {
		if f != nil {
			e.finder = f
		}
	}
}

func NewExtractor(cfg Config, opts ...Option) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Extractor{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.finder == nil {
		e.finder = NewPatternFinder(cfg.FieldName)
	}
	return e, nil
}

func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract returns the pair carried by resp. It fails with ErrMissingCookie
// or ErrMissingToken, wrapped with the name that was searched for. resp is
// not modified.
func (e *Extractor) Extract(resp *webclient.Response) (Pair, error) {
	if resp == nil {
		return Pair{}, fmt.Errorf("%w: cookie %q not found: nil response", ErrMissingCookie, e.cfg.CookieName)
	}

	cookie, err := e.cookieValue(resp)
	if err != nil {
		return Pair{}, err
	}

	token, ok := e.finder.FindToken(resp.Body)
	if !ok {
		return Pair{}, fmt.Errorf("%w: field %q not found in HTML", ErrMissingToken, e.cfg.FieldName)
	}

	return Pair{FieldValue: token, CookieValue: cookie}, nil
}

// cookieValue picks the first Set-Cookie value mentioning the cookie name and
// parses it. A header containing the name only as a substring of another
// cookie still wins if it comes first.
func (e *Extractor) cookieValue(resp *webclient.Response) (string, error) {
	for _, line := range resp.SetCookies() {
		if !strings.Contains(line, e.cfg.CookieName) {
			continue
		}
		c, err := http.ParseSetCookie(line)
		if err != nil {
			return "", fmt.Errorf("%w: cookie %q found but unparseable: %v", ErrMissingCookie, e.cfg.CookieName, err)
		}
		return c.Value, nil
	}
	return "", fmt.Errorf("%w: cookie %q not found in response", ErrMissingCookie, e.cfg.CookieName)
}

// Attach adds both halves of pair to req: the cookie to the Cookie header
// and the request token to form, which is then encoded as the body. form is
// copied, the caller's values are left untouched.
func (e *Extractor) Attach(req *webclient.Request, pair Pair, form url.Values) {
	if req.Headers == nil {
		req.Headers = http.Header{}
	}

	cookie := (&http.Cookie{Name: e.cfg.CookieName, Value: pair.CookieValue}).String()
	if existing := req.Headers.Get("Cookie"); existing != "" {
		cookie = existing + "; " + cookie
	}
	req.Headers.Set("Cookie", cookie)

	body := url.Values{}
	for k, vs := range form {
		body[k] = append([]string(nil), vs...)
	}
	body.Set(e.cfg.FieldName, pair.FieldValue)

	req.Body = []byte(body.Encode())
	req.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
}
