package post

import (
	"bytes"
	"encoding/json"

	"github.com/ncassessoria/gerapost/pkg/geometry"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Headline        *string          `json:"headline,omitempty"`
	Subtitle        *string          `json:"subtitle,omitempty"`
	Category        *string          `json:"category,omitempty"`
	ShowCategory    *bool            `json:"showCategory,omitempty"`
	CategoryBgColor *string          `json:"categoryBgColor,omitempty"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	ImagePosition   *ImagePosition   `json:"imagePosition,omitempty"`
	SiteURL         *string          `json:"siteUrl,omitempty"`
	Instagram       *string          `json:"instagram,omitempty"`
	ShowURL         *bool            `json:"showUrl,omitempty"`
	ShowInsta       *bool            `json:"showInsta,omitempty"`
	ThemeColor      *string          `json:"themeColor,omitempty"`
	FontFamily      *string          `json:"fontFamily,omitempty"`
	TemplateID      *int             `json:"templateId,omitempty"`
	Format          *geometry.Format `json:"format,omitempty"`
	Logo            *LogoPatch       `json:"logo,omitempty"`
}

// LogoPatch merges into the logo sub-record field by field.
// A non-nil URL pointing at "" removes the logo.
type LogoPatch struct {
	URL   *string  `json:"url,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Scale *float64 `json:"scale,omitempty"`
}

// UnmarshalJSON treats an explicit "url": null as removing the logo.
func (lp *LogoPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*lp = LogoPatch{}
	if v, ok := raw["url"]; ok {
		s := ""
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
		}
		lp.URL = &s
	}
	for key, dst := range map[string]**float64{"x": &lp.X, "y": &lp.Y, "scale": &lp.Scale} {
		v, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return err
		}
		*dst = &f
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply returns a copy of p with every non-nil patch field replaced and the
// logo merged field by field. The result is normalized.
func (p Post) Apply(patch Patch) Post {
	set(&p.Headline, patch.Headline)
	set(&p.Subtitle, patch.Subtitle)
	set(&p.Category, patch.Category)
	set(&p.ShowCategory, patch.ShowCategory)
	set(&p.CategoryBgColor, patch.CategoryBgColor)
	set(&p.ImageURL, patch.ImageURL)
	set(&p.ImagePosition, patch.ImagePosition)
	set(&p.SiteURL, patch.SiteURL)
	set(&p.Instagram, patch.Instagram)
	set(&p.ShowURL, patch.ShowURL)
	set(&p.ShowInsta, patch.ShowInsta)
	set(&p.ThemeColor, patch.ThemeColor)
	set(&p.FontFamily, patch.FontFamily)
	set(&p.TemplateID, patch.TemplateID)
	set(&p.Format, patch.Format)
	if lp := patch.Logo; lp != nil {
		set(&p.Logo.URL, lp.URL)
		set(&p.Logo.X, lp.X)
		set(&p.Logo.Y, lp.Y)
		set(&p.Logo.Scale, lp.Scale)
	}
	return p.Normalize()
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Merge reads a persisted record onto base. Keys missing from older records
// keep their base value, unknown keys are ignored, and the logo merges field
// by field.
func Merge(base Post, raw []byte) (Post, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return base.Normalize(), nil
	}
	var patch Patch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return base, err
	}
	return base.Apply(patch), nil
}

// Diff returns the patch that turns from into to. Applying it to from yields
// to exactly.
func Diff(from, to Post) Patch {
	var p Patch
	diff(&p.Headline, from.Headline, to.Headline)
	diff(&p.Subtitle, from.Subtitle, to.Subtitle)
	diff(&p.Category, from.Category, to.Category)
	diff(&p.ShowCategory, from.ShowCategory, to.ShowCategory)
	diff(&p.CategoryBgColor, from.CategoryBgColor, to.CategoryBgColor)
	diff(&p.ImageURL, from.ImageURL, to.ImageURL)
	diff(&p.ImagePosition, from.ImagePosition, to.ImagePosition)
	diff(&p.SiteURL, from.SiteURL, to.SiteURL)
	diff(&p.Instagram, from.Instagram, to.Instagram)
	diff(&p.ShowURL, from.ShowURL, to.ShowURL)
	diff(&p.ShowInsta, from.ShowInsta, to.ShowInsta)
	diff(&p.ThemeColor, from.ThemeColor, to.ThemeColor)
	diff(&p.FontFamily, from.FontFamily, to.FontFamily)
	diff(&p.TemplateID, from.TemplateID, to.TemplateID)
	diff(&p.Format, from.Format, to.Format)
	if from.Logo != to.Logo {
		lp := &LogoPatch{}
		diff(&lp.URL, from.Logo.URL, to.Logo.URL)
		diff(&lp.X, from.Logo.X, to.Logo.X)
		diff(&lp.Y, from.Logo.Y, to.Logo.Y)
		diff(&lp.Scale, from.Logo.Scale, to.Logo.Scale)
		p.Logo = lp
	}
	return p
}

func diff[T comparable](dst **T, from, to T) {
	if from != to {
		*dst = &to
	}
}
