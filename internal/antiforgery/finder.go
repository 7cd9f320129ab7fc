package antiforgery

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// TokenFinder locates the request token in a response body. It is the single
// HTML parsing boundary of the package.
type TokenFinder interface {
	FindToken(body []byte) (string, bool)
}

// PatternFinder matches the hidden input with a fixed literal pattern. It
// depends on the exact attribute order the server renders: name, then
// type="hidden", then value.
type PatternFinder struct {
	re *regexp.Regexp
}

func NewPatternFinder(fieldName string) *PatternFinder {
	pattern := fmt.Sprintf(`<input name="%s" type="hidden" value="([^"]+)" />`, regexp.QuoteMeta(fieldName))
	return &PatternFinder{re: regexp.MustCompile(pattern)}
}

func (f *PatternFinder) FindToken(body []byte) (string, bool) {
	m := f.re.FindSubmatch(body)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// DocumentFinder parses the body as HTML and takes the first hidden input
// with the configured name and a non-empty value. Attribute order and
// quoting do not matter.
type DocumentFinder struct {
	fieldName string
}

func NewDocumentFinder(fieldName string) *DocumentFinder {
	return &DocumentFinder{fieldName: fieldName}
}

func (f *DocumentFinder) FindToken(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var token string
	doc.Find(`input[type="hidden"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if name, _ := s.Attr("name"); name != f.fieldName {
			return true
		}
		if v, ok := s.Attr("value"); ok && v != "" {
			token = v
			return false
		}
		return true
	})
	return token, token != ""
}
