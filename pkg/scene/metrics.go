package scene

import (
	"strings"
	"unicode"
)

// Layout happens before any font file is opened, so templates stack text
// blocks using an advance-width estimate. The rasterizer re-wraps with real
// faces inside the boxes computed here, and clips or clamps what overflows.

// EstimateRune returns the approximate advance of r in em.
func EstimateRune(r rune) float64 {
	switch {
	case r == ' ':
		return 0.28
	case strings.ContainsRune("iljI.,;:'!|", r):
		return 0.28
	case strings.ContainsRune("ftr()[]-\"", r):
		return 0.38
	case strings.ContainsRune("mwMW@", r):
		return 0.88
	case unicode.IsUpper(r) || (unicode.IsDigit(r) && r != '1'):
		return 0.68
	default:
		return 0.56
	}
}

// EstimateWidth returns the approximate rendered width of s in pixels.
func EstimateWidth(s string, size, tracking float64, weight int) float64 {
	w := 0.0
	n := 0
	for _, r := range s {
		w += EstimateRune(r)
		n++
	}
	if weight >= 700 {
		w *= 1.06
	}
	return (w + tracking*float64(n)) * size
}

// WrapEstimate greedily breaks s into lines no wider than width. Explicit
// newlines are kept. A single word wider than width gets its own line.
func WrapEstimate(s string, width, size, tracking float64, weight int) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if EstimateWidth(next, size, tracking, weight) > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	return lines
}

// TextBlockHeight returns the height of n lines at the given size and line
// height multiple.
func TextBlockHeight(n int, size, lineHeight float64) float64 {
	if lineHeight <= 0 {
		lineHeight = 1.2
	}
	return float64(n) * size * lineHeight
}

// MeasureText returns the estimated height of s laid out in a box of the
// given width with st, honouring MaxLines and NoWrap.
func MeasureText(s string, width float64, st Style) float64 {
	if s == "" {
		return 0
	}
	text := displayText(s, st)
	n := 1
	if !st.NoWrap {
		n = len(WrapEstimate(text, width, st.FontSize, st.Tracking, st.Weight))
	}
	if st.MaxLines > 0 && n > st.MaxLines {
		n = st.MaxLines
	}
	return TextBlockHeight(n, st.FontSize, st.LineHeight)
}
