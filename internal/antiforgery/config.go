package antiforgery

import (
	"errors"
	"strings"
)

const (
	DefaultCookieName = "AntiForgeryTokenCookie"
	DefaultFieldName  = "AntiForgeryTokenField"
)

var ErrInvalidConfig = errors.New("antiforgery: cookie name and field name are required")

// Config names the two halves of the anti-forgery pair. Both must match the
// names the server under test is configured with.
type Config struct {
	// CookieName is the name of the cookie carrying the cookie token.
	CookieName string

	// FieldName is the name of the hidden form input carrying the request token.
	FieldName string
}

// DefaultConfig returns the names the employees app uses.
func DefaultConfig() Config {
	return Config{
		CookieName: DefaultCookieName,
		FieldName:  DefaultFieldName,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.CookieName) == "" || strings.TrimSpace(c.FieldName) == "" {
		return ErrInvalidConfig
	}
	return nil
}
