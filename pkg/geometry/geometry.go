// Package geometry holds the fixed canvas sizes for each supported post format.
//
// The table is tiny and closed: a feed post is 1080×1350 (4:5) and a story is
// 1080×1920 (9:16). [Lookup] is total over the two [Format] constants and
// panics on anything else, because an unknown format reaching it means a
// caller skipped validation. Use [Resolve] or [Parse] at input boundaries.
package geometry

import (
	"fmt"
	"strings"
)

// Format identifies a supported aspect ratio.
type Format string

// Supported formats.
const (
	Feed  Format = "feed-4-5"
	Story Format = "story-9-16"
)

// Size is the pixel size of a canvas.
type Size struct {
	Width  int
	Height int
	Label  string
}

var table = map[Format]Size{
	Feed:  {Width: 1080, Height: 1350, Label: "Feed (4:5) - Retrato"},
	Story: {Width: 1080, Height: 1920, Label: "Stories (9:16) - Tela Cheia"},
}

// Lookup returns the canvas size for f. It panics if f is not one of the
// defined formats.
func Lookup(f Format) Size {
	s, ok := table[f]
	if !ok {
		panic(fmt.Sprintf("geometry: unknown format %q", string(f)))
	}
	return s
}

// Resolve converts a raw string into a Format, rejecting unknown values.
func Resolve(s string) (Format, error) {
	f := Format(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown format %q (must be %q or %q)", s, Feed, Story)
	}
	return f, nil
}

// aliases are the short names the CLI accepts for each format.
var aliases = map[string]Format{
	"feed":  Feed,
	"story": Story,
}

// Parse is [Resolve] that also accepts the short names "feed" and "story".
func Parse(s string) (Format, error) {
	if f, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return Resolve(s)
}

// Formats returns all formats in display order.
func Formats() []Format {
	return []Format{Feed, Story}
}

// Valid reports whether f is a defined format.
func (f Format) Valid() bool {
	_, ok := table[f]
	return ok
}

// IsStory reports whether f is the tall story format.
func (f Format) IsStory() bool {
	return f == Story
}

// Scaled returns the size multiplied by an integer-rounded factor.
func (s Size) Scaled(factor float64) (int, int) {
	return int(float64(s.Width)*factor + 0.5), int(float64(s.Height)*factor + 0.5)
}
