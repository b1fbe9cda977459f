package post

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/geometry"
)

// Normalize coerces out-of-range fields into their valid ranges.
func (p Post) Normalize() Post {
	if p.TemplateID < 1 || p.TemplateID > TemplateCount {
		p.TemplateID = 1
	}
	if !p.Format.Valid() {
		p.Format = geometry.Feed
	}
	if !p.ImagePosition.Valid() {
		p.ImagePosition = ImageCenter
	}
	p.Logo.X = clamp(p.Logo.X, 0, 100)
	p.Logo.Y = clamp(p.Logo.Y, 0, 100)
	switch {
	case p.Logo.Scale <= 0:
		p.Logo.Scale = 1
	default:
		p.Logo.Scale = clamp(p.Logo.Scale, MinLogoScale, MaxLogoScale)
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate reports every field Normalize would have to change, plus invalid
// colors and text. It is used on user input before saving.
func (p Post) Validate() error {
	var errs []error
	if p.TemplateID < 1 || p.TemplateID > TemplateCount {
		errs = append(errs, perrors.New(perrors.ErrCodeInvalidTemplate, "templateId must be between 1 and %d, got %d", TemplateCount, p.TemplateID))
	}
	if !p.Format.Valid() {
		errs = append(errs, perrors.New(perrors.ErrCodeInvalidFormat, "format must be %q or %q, got %q", geometry.Feed, geometry.Story, p.Format))
	}
	if !p.ImagePosition.Valid() {
		errs = append(errs, perrors.New(perrors.ErrCodeInvalidInput, "imagePosition must be left, center or right, got %q", p.ImagePosition))
	}
	if p.Logo.X < 0 || p.Logo.X > 100 || p.Logo.Y < 0 || p.Logo.Y > 100 {
		errs = append(errs, perrors.New(perrors.ErrCodeInvalidInput, "logo position must be within 0..100, got (%g, %g)", p.Logo.X, p.Logo.Y))
	}
	if p.Logo.Scale < MinLogoScale || p.Logo.Scale > MaxLogoScale {
		errs = append(errs, perrors.New(perrors.ErrCodeInvalidInput, "logo scale must be within %g..%g, got %g", MinLogoScale, MaxLogoScale, p.Logo.Scale))
	}
	for _, c := range [][2]string{{"themeColor", p.ThemeColor}, {"categoryBgColor", p.CategoryBgColor}} {
		if err := perrors.ValidateColor(c[1]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c[0], err))
		}
	}
	for _, t := range [][2]string{{"headline", p.Headline}, {"subtitle", p.Subtitle}, {"category", p.Category}} {
		if err := perrors.ValidateText(t[0], t[1]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Theme returns the parsed theme color, falling back to the default accent
// when the stored string is not a valid hex color.
func (p Post) Theme() colorful.Color {
	return parseColor(p.ThemeColor, DefaultThemeColor)
}

// CategoryColor returns the parsed category background color.
func (p Post) CategoryColor() colorful.Color {
	return parseColor(p.CategoryBgColor, DefaultCategoryColor)
}

func parseColor(s, fallback string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		c, _ = colorful.Hex(fallback)
	}
	return c
}
