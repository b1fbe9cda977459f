package control

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/metadata"
	"github.com/ncassessoria/gerapost/pkg/post"
)

type recorder struct {
	mu    sync.Mutex
	posts []post.Post
}

func (r *recorder) Schedule(p post.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, p)
}

func (r *recorder) last() post.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[len(r.posts)-1]
}

func TestUpdateDataSchedules(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(post.Default(), WithPersister(rec))

	got := e.UpdateData(post.Patch{Headline: post.Ptr("Nova")})
	if got.Headline != "Nova" || e.Post().Headline != "Nova" {
		t.Errorf("headline = %q", got.Headline)
	}
	if len(rec.posts) != 1 || !cmp.Equal(rec.last(), got) {
		t.Errorf("persister got %d snapshots", len(rec.posts))
	}

	got = e.UpdateData(post.Patch{Logo: &post.LogoPatch{Scale: post.Ptr(9.0)}})
	if got.Logo.Scale != post.MaxLogoScale {
		t.Errorf("scale not clamped: %v", got.Logo.Scale)
	}
}

func TestSelectTab(t *testing.T) {
	tests := []struct {
		tab    Tab
		from   geometry.Format
		format geometry.Format
	}{
		{TabStory, geometry.Feed, geometry.Story},
		{TabFeed, geometry.Story, geometry.Feed},
		{TabLogo, geometry.Story, geometry.Story},
		{TabEdit, geometry.Feed, geometry.Feed},
	}
	for _, tt := range tests {
		t.Run(string(tt.tab), func(t *testing.T) {
			start := post.Default()
			start.Format = tt.from
			rec := &recorder{}
			e := NewEditor(start, WithPersister(rec))

			got, err := e.SelectTab(tt.tab)
			if err != nil {
				t.Fatal(err)
			}
			if got.Format != tt.format || e.Tab() != tt.tab {
				t.Errorf("format = %s tab = %s, want %s %s", got.Format, e.Tab(), tt.format, tt.tab)
			}
			_, overrides := TabOverrides[tt.tab]
			if overrides != (len(rec.posts) == 1) {
				t.Errorf("scheduled %d snapshots for %s", len(rec.posts), tt.tab)
			}
		})
	}

	e := NewEditor(post.Default())
	if _, err := e.SelectTab("settings"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("unknown tab: %v", err)
	}
}

func TestSetLogoPreset(t *testing.T) {
	want := map[LogoPreset][2]float64{
		LogoTopLeft:     {15, 10},
		LogoTopRight:    {85, 10},
		LogoBottomLeft:  {15, 90},
		LogoBottomRight: {85, 90},
		LogoCenter:      {50, 50},
	}
	for preset, xy := range want {
		start := post.Default()
		start.Logo.Scale = 1.7
		e := NewEditor(start)
		got, err := e.SetLogoPreset(preset)
		if err != nil {
			t.Fatal(err)
		}
		if got.Logo.X != xy[0] || got.Logo.Y != xy[1] || got.Logo.Scale != 1.7 {
			t.Errorf("%s: logo = %+v", preset, got.Logo)
		}
	}
	if _, err := NewEditor(post.Default()).SetLogoPreset("middle"); err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestSelectTemplate(t *testing.T) {
	e := NewEditor(post.Default())
	if got, err := e.SelectTemplate(6); err != nil || got.TemplateID != 6 {
		t.Errorf("SelectTemplate(6) = %d, %v", got.TemplateID, err)
	}
	if _, err := e.SelectTemplate(10); !perrors.Is(err, perrors.ErrCodeInvalidTemplate) {
		t.Errorf("SelectTemplate(10) = %v", err)
	}
	if e.Post().TemplateID != 6 {
		t.Error("failed selection changed the template")
	}
}

func TestApplyImport(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(post.Default(), WithPersister(rec))
	before := e.Post()

	got := e.ApplyImport(metadata.Result{Headline: "X", SiteURL: "example.com"})
	if got.Headline != "X" || got.SiteURL != "example.com" {
		t.Errorf("import not applied: %+v", got)
	}
	if got.Subtitle != before.Subtitle || got.ImageURL != before.ImageURL {
		t.Error("empty import fields overwrote the post")
	}

	e.ApplyImport(metadata.Result{})
	if len(rec.posts) != 1 {
		t.Errorf("empty import scheduled a write")
	}
}

func TestNudgeLogo(t *testing.T) {
	start := post.Default()
	start.Logo = post.Logo{URL: "x.png", X: 98, Y: 50, Scale: 1}
	e := NewEditor(start)
	got := e.NudgeLogo(5, -5, 0.5)
	if got.Logo.X != 100 || got.Logo.Y != 45 || got.Logo.Scale != 1.5 {
		t.Errorf("logo = %+v", got.Logo)
	}
}

func TestReset(t *testing.T) {
	e := NewEditor(post.Default())
	e.SelectTab(TabStory)
	e.LoadSample()
	got := e.Reset()
	if !cmp.Equal(got, post.Default()) || e.Tab() != TabFeed {
		t.Errorf("Reset() left tab %s, post %+v", e.Tab(), got)
	}
}

func TestUploads(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	img := filepath.Join(dir, "logo.png")
	os.WriteFile(img, buf.Bytes(), 0o600)
	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(txt, []byte("hello"), 0o600)

	e := NewEditor(post.Default())
	got, err := e.UploadLogo(img)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.Logo.URL, "data:image/png;base64,") {
		t.Errorf("logo url = %.40q", got.Logo.URL)
	}
	got, err = e.UploadBackground(img)
	if err != nil || !strings.HasPrefix(got.ImageURL, "data:image/png") {
		t.Errorf("background = %.40q, %v", got.ImageURL, err)
	}

	if _, err := e.UploadLogo(txt); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("text upload: %v", err)
	}
	if _, err := e.UploadLogo(filepath.Join(dir, "missing.png")); !perrors.Is(err, perrors.ErrCodeInvalidPath) {
		t.Errorf("missing upload: %v", err)
	}
	if got := e.RemoveLogo(); got.Logo.HasLogo() {
		t.Error("logo not removed")
	}
}

func TestConcurrentUpdates(t *testing.T) {
	e := NewEditor(post.Default(), WithPersister(&recorder{}))
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.UpdateData(post.Patch{TemplateID: post.Ptr(i%9 + 1)})
			_ = e.Post()
		}()
	}
	wg.Wait()
	if id := e.Post().TemplateID; id < 1 || id > 9 {
		t.Errorf("template = %d", id)
	}
}

// stallingRecorder holds its first Schedule call until release is closed.
type stallingRecorder struct {
	recorder
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *stallingRecorder) Schedule(p post.Post) {
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.entered)
		<-r.release
	}
	r.recorder.Schedule(p)
}

func TestScheduleFollowsUpdateOrder(t *testing.T) {
	rec := &stallingRecorder{entered: make(chan struct{}), release: make(chan struct{})}
	e := NewEditor(post.Default(), WithPersister(rec))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.UpdateData(post.Patch{Headline: post.Ptr("A")})
	}()
	<-rec.entered
	go func() {
		defer wg.Done()
		e.UpdateData(post.Patch{Headline: post.Ptr("B")})
	}()
	time.Sleep(50 * time.Millisecond)
	close(rec.release)
	wg.Wait()

	model, saved := e.Post().Headline, rec.last().Headline
	if model != saved {
		t.Errorf("model headline = %q, last scheduled = %q", model, saved)
	}
	if len(rec.posts) != 2 {
		t.Errorf("scheduled %d snapshots, want 2", len(rec.posts))
	}
}

func TestParseTab(t *testing.T) {
	for _, tab := range Tabs() {
		got, err := ParseTab(strings.ToUpper(string(tab)))
		if err != nil || got != tab {
			t.Errorf("ParseTab(%s) = %s, %v", tab, got, err)
		}
	}
}
