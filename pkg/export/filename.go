package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug turns a category into a file-name fragment: lower case, diacritics
// removed, whitespace runs replaced by '-', other punctuation dropped. An
// empty result becomes "arte".
func Slug(category string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(category)))
	if err != nil {
		plain = strings.ToLower(category)
	}

	var b strings.Builder
	dash := false
	for _, r := range plain {
		switch {
		case unicode.IsSpace(r):
			dash = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "arte"
	}
	return b.String()
}

// Filename names an exported image: gera-post-<slug>-<unix-ms>.png.
func Filename(category string, at time.Time) string {
	return fmt.Sprintf("gera-post-%s-%d.png", Slug(category), at.UnixMilli())
}
