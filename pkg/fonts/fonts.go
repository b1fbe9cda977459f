// Package fonts resolves a font family and weight to a parsed TrueType font.
//
// Posts name their family by display name ("Montserrat", "Playfair Display").
// A [Library] looks for a matching file in this order:
//
//  1. the configured font directory
//  2. the system font directories, via go-findfont
//  3. the Go fonts embedded in golang.org/x/image, picked by weight
//
// The embedded fallback means rendering never fails for lack of a font; it
// only looks different. [Library.Resolve] reports which source was used so
// the CLI can warn about it.
package fonts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// Embedded fallback fonts (parsed once on first access).
var (
	embedded     map[string]*truetype.Font
	embeddedOnce sync.Once
	embeddedErr  error
)

func loadEmbedded() (map[string]*truetype.Font, error) {
	embeddedOnce.Do(func() {
		embedded = make(map[string]*truetype.Font)
		for name, data := range map[string][]byte{
			"goregular": goregular.TTF,
			"gomedium":  gomedium.TTF,
			"gobold":    gobold.TTF,
		} {
			f, err := truetype.Parse(data)
			if err != nil {
				embeddedErr = fmt.Errorf("parse embedded %s: %w", name, err)
				return
			}
			embedded[name] = f
		}
	})
	return embedded, embeddedErr
}

// weightNames maps CSS weights to the suffixes font files use.
var weightNames = map[int]string{
	100: "Thin",
	200: "ExtraLight",
	300: "Light",
	400: "Regular",
	500: "Medium",
	600: "SemiBold",
	700: "Bold",
	800: "ExtraBold",
	900: "Black",
}

// Source describes where a resolved font came from.
type Source struct {
	Path     string // file path, or "embedded:<name>"
	Embedded bool
}

type key struct {
	family string
	weight int
}

type entry struct {
	font   *truetype.Font
	source Source
}

// Library resolves and caches fonts. It is safe for concurrent use.
type Library struct {
	dir    string
	find   func(name string) (string, error)
	logger *log.Logger

	mu    sync.Mutex
	cache map[key]entry
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *log.Logger) Option {
	return func(lib *Library) { lib.logger = l }
}

// WithoutSystemFonts disables the system font lookup. Tests use it to get
// the same fonts on every machine.
func WithoutSystemFonts() Option {
	return func(lib *Library) {
		lib.find = func(string) (string, error) { return "", os.ErrNotExist }
	}
}

// New creates a library that looks in dir first. dir may be empty.
func New(dir string, opts ...Option) *Library {
	lib := &Library{
		dir:    dir,
		find:   findfont.Find,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		cache:  make(map[key]entry),
	}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// Font returns the font for family at weight. It always returns a usable
// font unless the embedded fallback itself is broken.
func (l *Library) Font(family string, weight int) (*truetype.Font, error) {
	e, err := l.resolve(family, weight)
	if err != nil {
		return nil, err
	}
	return e.font, nil
}

// Resolve reports where the font for family at weight comes from.
func (l *Library) Resolve(family string, weight int) (Source, error) {
	e, err := l.resolve(family, weight)
	return e.source, err
}

func (l *Library) resolve(family string, weight int) (entry, error) {
	k := key{family: family, weight: normalizeWeight(weight)}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[k]; ok {
		return e, nil
	}

	for _, name := range candidates(k.family, k.weight) {
		path := l.locate(name)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Debug("font unreadable", "path", path, "error", err)
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			l.logger.Debug("font unparsable", "path", path, "error", err)
			continue
		}
		e := entry{font: f, source: Source{Path: path}}
		l.cache[k] = e
		return e, nil
	}

	fonts, err := loadEmbedded()
	if err != nil {
		return entry{}, err
	}
	name := fallbackName(k.weight)
	l.logger.Debug("using embedded font", "family", family, "weight", k.weight, "font", name)
	e := entry{font: fonts[name], source: Source{Path: "embedded:" + name, Embedded: true}}
	l.cache[k] = e
	return e, nil
}

func (l *Library) locate(name string) string {
	if l.dir != "" {
		p := filepath.Join(l.dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	p, err := l.find(name)
	if err != nil {
		return ""
	}
	return p
}

// candidates lists file names to try for a family and weight, nearest
// weight first.
func candidates(family string, weight int) []string {
	base := strings.ReplaceAll(family, " ", "")
	var out []string
	for _, w := range nearestWeights(weight) {
		suffix := weightNames[w]
		out = append(out, base+"-"+suffix+".ttf")
		if w == 400 {
			out = append(out, base+".ttf")
		}
	}
	return out
}

// nearestWeights orders the defined weights by distance from w, preferring
// heavier on ties.
func nearestWeights(w int) []int {
	out := []int{w}
	for d := 100; d <= 800; d += 100 {
		if up := w + d; up <= 900 {
			out = append(out, up)
		}
		if down := w - d; down >= 100 {
			out = append(out, down)
		}
	}
	return out
}

func normalizeWeight(w int) int {
	if w <= 0 {
		return 400
	}
	w = (w + 50) / 100 * 100
	if w < 100 {
		return 100
	}
	if w > 900 {
		return 900
	}
	return w
}

func fallbackName(weight int) string {
	switch {
	case weight >= 700:
		return "gobold"
	case weight >= 500:
		return "gomedium"
	default:
		return "goregular"
	}
}

// Face builds a face at size pixels. Faces are not safe for concurrent use,
// so callers own the returned value.
func Face(f *truetype.Font, size float64, hinting bool) font.Face {
	h := font.HintingNone
	if hinting {
		h = font.HintingFull
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: h})
}
