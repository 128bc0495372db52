// Package langcode maps the site's language labels to canonical codes.
package langcode

import (
	"strings"

	"golang.org/x/text/language"
)

// labels maps the Chinese language names printed on product pages to BCP 47
// base languages. Both Chinese scripts collapse to "zh".
var labels = map[string]string{
	"英文":   "en",
	"繁體中文": "zh",
	"簡體中文": "zh",
	"中文":   "zh",
	"日文":   "ja",
	"韓文":   "ko",
}

// FromLabel returns the canonical code for a site language label.
// The second result is false for labels the table does not know.
func FromLabel(label string) (string, bool) {
	code, ok := labels[strings.TrimSpace(label)]
	if !ok {
		return "", false
	}
	return Canonicalize(code)
}

// Canonicalize normalizes a language code ("EN", "zh-Hant", "eng") to its
// base language ("en", "zh"). Unparseable input reports false.
func Canonicalize(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	return base.String(), true
}
