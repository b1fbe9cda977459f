// Package post defines the composition model: every user-editable field that
// describes one social-media graphic.
//
// A [Post] is a plain value. It is created from [Default], merged with a
// previously persisted record via [Merge], and changed only through
// [Post.Apply] with a [Patch]. All three paths finish with [Post.Normalize]
// so renderers can rely on the invariants below without re-checking them:
//
//   - TemplateID is one of the nine defined templates (unknown ids become 1)
//   - Format is a geometry table entry (unknown formats become feed)
//   - Logo.Scale lies in [MinLogoScale, MaxLogoScale]
//   - Logo.X and Logo.Y lie in [0, 100]
//
// The JSON encoding uses the camelCase keys of the persisted draft record, so
// a draft written by any earlier version still loads.
package post

import (
	"bytes"
	"encoding/json"

	"github.com/ncassessoria/gerapost/pkg/geometry"
)

// ImagePosition anchors the cover-fit background image horizontally.
type ImagePosition string

// Image anchors.
const (
	ImageLeft   ImagePosition = "left"
	ImageCenter ImagePosition = "center"
	ImageRight  ImagePosition = "right"
)

// Valid reports whether p is one of the defined anchors.
func (p ImagePosition) Valid() bool {
	return p == ImageLeft || p == ImageCenter || p == ImageRight
}

// Logo is the logo overlay transform. X and Y are percentages of the canvas
// and locate the logo's centre. An empty URL means no logo.
type Logo struct {
	URL   string  `json:"url"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

type logoJSON struct {
	URL   *string `json:"url"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// MarshalJSON writes an empty URL as null, matching stored drafts.
func (l Logo) MarshalJSON() ([]byte, error) {
	out := logoJSON{X: l.X, Y: l.Y, Scale: l.Scale}
	if l.URL != "" {
		out.URL = &l.URL
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null for the URL.
func (l *Logo) UnmarshalJSON(data []byte) error {
	var in logoJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*l = Logo{X: in.X, Y: in.Y, Scale: in.Scale}
	if in.URL != nil {
		l.URL = *in.URL
	}
	return nil
}

// HasLogo reports whether a logo should be drawn.
func (l Logo) HasLogo() bool { return l.URL != "" }

// Post is the composition model.
type Post struct {
	Headline        string          `json:"headline"`
	Subtitle        string          `json:"subtitle"`
	Category        string          `json:"category"`
	ShowCategory    bool            `json:"showCategory"`
	CategoryBgColor string          `json:"categoryBgColor"`
	ImageURL        string          `json:"imageUrl"`
	ImagePosition   ImagePosition   `json:"imagePosition"`
	SiteURL         string          `json:"siteUrl"`
	Instagram       string          `json:"instagram"`
	ShowURL         bool            `json:"showUrl"`
	ShowInsta       bool            `json:"showInsta"`
	ThemeColor      string          `json:"themeColor"`
	FontFamily      string          `json:"fontFamily"`
	TemplateID      int             `json:"templateId"`
	Format          geometry.Format `json:"format"`
	Logo            Logo            `json:"logo"`
}

// Template count and logo scale range.
const (
	TemplateCount = 9
	MinLogoScale  = 0.2
	MaxLogoScale  = 3.0
)

// Default accent colors.
const (
	DefaultThemeColor    = "#ea580c"
	DefaultCategoryColor = "#000000"
)

// Default returns the model every session starts from.
func Default() Post {
	return Post{
		Headline:        "Manchete da notícia aparece aqui em destaque principal",
		Subtitle:        "O subtítulo ou lide da matéria jornalística complementar aparece aqui para dar mais contexto ao leitor sobre o fato ocorrido.",
		Category:        "Geral",
		ShowCategory:    true,
		CategoryBgColor: DefaultCategoryColor,
		ImageURL:        "https://picsum.photos/1080/1350",
		ImagePosition:   ImageCenter,
		SiteURL:         "www.noticiascolombia.com.br",
		Instagram:       "@noticiascolombia",
		ShowURL:         true,
		ShowInsta:       true,
		ThemeColor:      DefaultThemeColor,
		FontFamily:      "Montserrat",
		TemplateID:      1,
		Format:          geometry.Feed,
		Logo:            Logo{X: 50, Y: 10, Scale: 1},
	}
}

// MockNews is the sample story used to fill the editor with realistic content.
func MockNews() Patch {
	return Patch{
		Headline: Ptr("Governo anuncia novos investimentos para o setor de tecnologia em 2024"),
		Subtitle: Ptr("Medida visa acelerar a transformação digital e gerar milhares de novos empregos na região."),
		ImageURL: Ptr("https://picsum.photos/seed/tech/1080/1350"),
		Category: Ptr("Economia"),
	}
}

// Fonts lists the selectable font families.
func Fonts() []string {
	return []string{"Montserrat", "Inter", "Roboto", "Merriweather", "Oswald", "Playfair Display"}
}

// Size returns the canvas size for the post's format.
func (p Post) Size() geometry.Size {
	return geometry.Lookup(p.Format)
}

// ShowsCategory reports whether the category tag is drawn.
func (p Post) ShowsCategory() bool {
	return p.ShowCategory && p.Category != ""
}

// ShowsFooter reports whether any footer item is drawn.
func (p Post) ShowsFooter() bool {
	return p.ShowInsta || p.ShowURL
}

// Marshal encodes the post as an indented persisted record.
func (p Post) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T { return &v }
