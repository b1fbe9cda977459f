package geometry

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		format Format
		w, h   int
	}{
		{Feed, 1080, 1350},
		{Story, 1080, 1920},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			s := Lookup(tt.format)
			if s.Width != tt.w || s.Height != tt.h {
				t.Errorf("Lookup(%s) = %dx%d, want %dx%d", tt.format, s.Width, s.Height, tt.w, tt.h)
			}
			if s.Label == "" {
				t.Error("Label should not be empty")
			}
		})
	}
}

func TestLookupUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Lookup with unknown format should panic")
		}
	}()
	Lookup(Format("square"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"feed-4-5", Feed, false},
		{"story-9-16", Story, false},
		{"", "", true},
		{"feed", "", true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"feed", Feed, false},
		{"story", Story, false},
		{" Story ", Story, false},
		{"story-9-16", Story, false},
		{"square", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScaled(t *testing.T) {
	w, h := Lookup(Story).Scaled(2)
	if w != 2160 || h != 3840 {
		t.Errorf("Scaled(2) = %dx%d, want 2160x3840", w, h)
	}
}

func TestFormatsOrder(t *testing.T) {
	fs := Formats()
	if len(fs) != 2 || fs[0] != Feed || fs[1] != Story {
		t.Errorf("Formats() = %v", fs)
	}
	if Feed.IsStory() || !Story.IsStory() {
		t.Error("IsStory mismatch")
	}
}
