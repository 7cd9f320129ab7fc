package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/raysh454/employeesapp/internal/antiforgery"
)

var (
	ErrAntiForgery = errors.New("the anti-forgery token could not be validated")

	errCookieMissing = fmt.Errorf("%w: cookie token missing", ErrAntiForgery)
	errFieldMissing  = fmt.Errorf("%w: request token missing", ErrAntiForgery)
	errTokenMismatch = fmt.Errorf("%w: cookie and request tokens do not match", ErrAntiForgery)
)

// Guard issues and checks the anti-forgery pair. The cookie carries a random
// token; the hidden field carries its HMAC, so neither half is useful alone.
type Guard struct {
	cookieName string
	fieldName  string
	key        []byte
}

func NewGuard(cfg antiforgery.Config, key []byte) (*Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate anti-forgery key: %w", err)
		}
	}
	return &Guard{
		cookieName: cfg.CookieName,
		fieldName:  cfg.FieldName,
		key:        key,
	}, nil
}

func (g *Guard) FieldName() string { return g.fieldName }

// Issue returns the request token to embed in the form. The cookie token is
// reused when the request already carries a well-formed one, otherwise a new
// cookie is set on w.
func (g *Guard) Issue(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(g.cookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return g.sign(c.Value)
		}
	}

	cookieToken := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    cookieToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return g.sign(cookieToken)
}

// Validate checks that r carries both halves and that they belong together.
// r's form must already be parsed.
func (g *Guard) Validate(r *http.Request) error {
	c, err := r.Cookie(g.cookieName)
	if err != nil || c.Value == "" {
		return errCookieMissing
	}
	field := r.PostForm.Get(g.fieldName)
	if field == "" {
		return errFieldMissing
	}
	if !hmac.Equal([]byte(field), []byte(g.sign(c.Value))) {
		return errTokenMismatch
	}
	return nil
}

func (g *Guard) sign(cookieToken string) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(cookieToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// rejectionReason labels a Validate error for metrics.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, errCookieMissing):
		return "cookie_missing"
	case errors.Is(err, errFieldMissing):
		return "field_missing"
	case errors.Is(err, errTokenMismatch):
		return "mismatch"
	default:
		return "other"
	}
}
