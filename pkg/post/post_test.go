package post

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/geometry"
)

func allFlagsOff() Post {
	p := Default()
	p.ShowCategory = false
	p.ShowURL = false
	p.ShowInsta = false
	p.Category = ""
	p.ImageURL = ""
	p.Format = geometry.Story
	p.TemplateID = 7
	p.ImagePosition = ImageRight
	p.Logo = Logo{URL: "data:image/png;base64,AAAA", X: 15, Y: 90, Scale: 0.5}
	return p
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		post Post
	}{
		{"defaults", Default()},
		{"all flags off", allFlagsOff()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.post.Marshal()
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := Merge(Default(), data)
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if diff := cmp.Diff(tt.post, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLogoNullURL(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"url": null`) {
		t.Errorf("empty logo url should encode as null:\n%s", data)
	}

	var l Logo
	if err := json.Unmarshal([]byte(`{"url":null,"x":1,"y":2,"scale":1}`), &l); err != nil {
		t.Fatal(err)
	}
	if l.URL != "" || l.HasLogo() {
		t.Errorf("null url should decode to no logo, got %+v", l)
	}
}

func TestMergeOlderRecord(t *testing.T) {
	// A record from before categoryBgColor, fontFamily and logo existed.
	raw := []byte(`{"headline":"Antiga","templateId":4,"format":"story-9-16","legacyField":true}`)
	got, err := Merge(Default(), raw)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := Default()
	want.Headline = "Antiga"
	want.TemplateID = 4
	want.Format = geometry.Story
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeNestedLogo(t *testing.T) {
	base := Default()
	base.Logo.URL = "https://cdn.example.com/logo.png"
	got, err := Merge(base, []byte(`{"logo":{"x":85}}`))
	if err != nil {
		t.Fatal(err)
	}
	want := base.Logo
	want.X = 85
	if got.Logo != want {
		t.Errorf("Logo = %+v, want %+v", got.Logo, want)
	}

	got, err = Merge(base, []byte(`{"logo":{"url":null}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Logo.HasLogo() {
		t.Error("explicit null url should remove the logo")
	}
}

func TestMergeEmptyAndInvalid(t *testing.T) {
	got, err := Merge(Default(), nil)
	if err != nil || got != Default() {
		t.Errorf("Merge(nil) = %+v, %v", got, err)
	}
	if _, err := Merge(Default(), []byte(`{not json`)); err == nil {
		t.Error("Merge should fail on malformed JSON")
	}
}

func TestApply(t *testing.T) {
	p := Default().Apply(Patch{
		Headline:  Ptr("Breaking News"),
		ShowInsta: Ptr(false),
		Logo:      &LogoPatch{Scale: Ptr(2.5)},
	})
	if p.Headline != "Breaking News" || p.ShowInsta {
		t.Errorf("Apply did not set fields: %+v", p)
	}
	if p.Logo.Scale != 2.5 || p.Logo.X != 50 || p.Logo.Y != 10 {
		t.Errorf("Logo = %+v, want nested merge", p.Logo)
	}
	if p.Subtitle != Default().Subtitle {
		t.Error("untouched field changed")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		check func(Post) bool
	}{
		{"unknown template", Patch{TemplateID: Ptr(42)}, func(p Post) bool { return p.TemplateID == 1 }},
		{"zero template", Patch{TemplateID: Ptr(0)}, func(p Post) bool { return p.TemplateID == 1 }},
		{"unknown format", Patch{Format: Ptr(geometry.Format("square"))}, func(p Post) bool { return p.Format == geometry.Feed }},
		{"unknown anchor", Patch{ImagePosition: Ptr(ImagePosition("top"))}, func(p Post) bool { return p.ImagePosition == ImageCenter }},
		{"logo x low", Patch{Logo: &LogoPatch{X: Ptr(-5.0)}}, func(p Post) bool { return p.Logo.X == 0 }},
		{"logo y high", Patch{Logo: &LogoPatch{Y: Ptr(140.0)}}, func(p Post) bool { return p.Logo.Y == 100 }},
		{"logo scale zero", Patch{Logo: &LogoPatch{Scale: Ptr(0.0)}}, func(p Post) bool { return p.Logo.Scale == 1 }},
		{"logo scale tiny", Patch{Logo: &LogoPatch{Scale: Ptr(0.05)}}, func(p Post) bool { return p.Logo.Scale == MinLogoScale }},
		{"logo scale huge", Patch{Logo: &LogoPatch{Scale: Ptr(9.0)}}, func(p Post) bool { return p.Logo.Scale == MaxLogoScale }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default().Apply(tt.patch)
			if !tt.check(got) {
				t.Errorf("Apply(%s) = %+v", tt.name, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	bad := Default()
	bad.TemplateID = 10
	bad.ThemeColor = "orange"
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !perrors.Is(err, perrors.ErrCodeInvalidTemplate) {
		t.Errorf("expected INVALID_TEMPLATE in %v", err)
	}
	if !perrors.Is(err, perrors.ErrCodeInvalidColor) {
		t.Errorf("expected INVALID_COLOR in %v", err)
	}
}

func TestDiff(t *testing.T) {
	from := Default()
	to := allFlagsOff()
	if got := from.Apply(Diff(from, to)); got != to {
		t.Errorf("Apply(Diff) mismatch:\n%s", cmp.Diff(to, got))
	}
	if !Diff(from, from).Empty() {
		t.Error("Diff of identical posts should be empty")
	}
}

func TestThemeFallback(t *testing.T) {
	p := Default()
	p.ThemeColor = "not-a-color"
	if got := p.Theme().Hex(); got != DefaultThemeColor {
		t.Errorf("Theme() = %s, want %s", got, DefaultThemeColor)
	}
}

func TestShows(t *testing.T) {
	p := Default()
	if !p.ShowsCategory() || !p.ShowsFooter() {
		t.Error("defaults show category and footer")
	}
	p.Category = ""
	if p.ShowsCategory() {
		t.Error("empty category should be hidden")
	}
	p.ShowInsta, p.ShowURL = false, false
	if p.ShowsFooter() {
		t.Error("footer with both items hidden should be omitted")
	}
}
