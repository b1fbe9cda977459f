package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ncassessoria/gerapost/pkg/control"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/export"
	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/metadata"
	"github.com/ncassessoria/gerapost/pkg/post"
)

type recorder struct{ saved []post.Post }

func (r *recorder) Schedule(p post.Post) { r.saved = append(r.saved, p) }

func newTestModel(t *testing.T, actions editorActions) (EditorModel, *control.Editor, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := control.NewEditor(post.Default(), control.WithPersister(rec))
	return NewEditorModel(context.Background(), e, actions), e, rec
}

func keys(m tea.Model, ks ...string) tea.Model {
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+o":
			msg = tea.KeyMsg{Type: tea.KeyCtrlO}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyCtrlN}
		case "ctrl+r":
			msg = tea.KeyMsg{Type: tea.KeyCtrlR}
		case "ctrl+u":
			msg = tea.KeyMsg{Type: tea.KeyCtrlU}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestEditorTabsSwitchFormat(t *testing.T) {
	m, e, rec := newTestModel(t, editorActions{})

	keys(m, "tab")
	if e.Tab() != control.TabStory || e.Post().Format != geometry.Story {
		t.Fatalf("tab to story: tab=%s format=%s", e.Tab(), e.Post().Format)
	}
	keys(m, "tab", "tab")
	if e.Tab() != control.TabEdit || e.Post().Format != geometry.Story {
		t.Errorf("logo and edit tabs keep the format: tab=%s format=%s", e.Tab(), e.Post().Format)
	}
	keys(m, "tab")
	if e.Tab() != control.TabFeed || e.Post().Format != geometry.Feed {
		t.Errorf("wrap to feed: tab=%s format=%s", e.Tab(), e.Post().Format)
	}
	if len(rec.saved) != 2 {
		t.Errorf("only feed and story tabs change the post, got %d saves", len(rec.saved))
	}
}

func TestEditorTemplatePicker(t *testing.T) {
	m, e, _ := newTestModel(t, editorActions{})

	m = keys(m, "6").(EditorModel)
	if e.Post().TemplateID != 6 {
		t.Fatalf("digit should pick template 6, got %d", e.Post().TemplateID)
	}
	keys(m, "down", "down", "enter")
	if e.Post().TemplateID != 8 {
		t.Errorf("cursor pick: got %d, want 8", e.Post().TemplateID)
	}
}

func TestEditorFieldEditing(t *testing.T) {
	m, e, _ := newTestModel(t, editorActions{})
	m = keys(m, "shift+tab").(EditorModel) // edit tab

	// Replace the headline.
	m = keys(m, "enter", "ctrl+u", "Nova", " ", "manchete", "enter").(EditorModel)
	if got := e.Post().Headline; got != "Nova manchete" {
		t.Fatalf("headline = %q", got)
	}

	// Esc abandons an edit.
	m = keys(m, "down", "enter", "x", "esc").(EditorModel)
	if e.Post().Subtitle != post.Default().Subtitle {
		t.Error("esc should discard the edit")
	}

	// Toggle showCategory (fourth row).
	m = keys(m, "down", "down", "enter").(EditorModel)
	if e.Post().ShowCategory {
		t.Error("enter on a toggle should flip it")
	}

	// Cycle image position (seventh row).
	keys(m, "down", "down", "down", "enter")
	if e.Post().ImagePosition != post.ImageRight {
		t.Errorf("image position = %s, want right", e.Post().ImagePosition)
	}
}

func TestEditorRejectsInvalidColor(t *testing.T) {
	m, e, _ := newTestModel(t, editorActions{})
	m = keys(m, "shift+tab").(EditorModel)
	for range 11 {
		m = keys(m, "down").(EditorModel)
	}
	m = keys(m, "enter", "ctrl+u", "laranja", "enter").(EditorModel)
	if e.Post().ThemeColor != post.DefaultThemeColor {
		t.Errorf("invalid color applied: %s", e.Post().ThemeColor)
	}
	if !m.failed || m.status == "" {
		t.Error("invalid color should surface an error")
	}
}

func TestEditorLogo(t *testing.T) {
	m, e, _ := newTestModel(t, editorActions{})
	m = keys(m, "tab", "tab").(EditorModel) // logo tab

	m = keys(m, "9").(EditorModel)
	if l := e.Post().Logo; l.X != 85 || l.Y != 10 {
		t.Fatalf("preset tr: got (%g, %g)", l.X, l.Y)
	}
	m = keys(m, "left", "down", "+").(EditorModel)
	l := e.Post().Logo
	if l.X != 84 || l.Y != 11 || l.Scale < 1.09 || l.Scale > 1.11 {
		t.Errorf("nudged logo = %+v", l)
	}
	for range 30 {
		m = keys(m, "-").(EditorModel)
	}
	if e.Post().Logo.Scale != post.MinLogoScale {
		t.Errorf("scale should clamp at %g, got %g", post.MinLogoScale, e.Post().Logo.Scale)
	}
}

func TestEditorImport(t *testing.T) {
	var asked string
	m, e, _ := newTestModel(t, editorActions{
		Import: func(_ context.Context, url string) (metadata.Result, error) {
			asked = url
			return metadata.Result{Headline: "Importada", SiteURL: "example.com"}, nil
		},
	})

	m = keys(m, "ctrl+o", "https://example.com/a").(EditorModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(EditorModel)
	if cmd == nil || m.busy == "" {
		t.Fatal("enter should start the import")
	}
	next, _ = m.Update(cmd())
	m = next.(EditorModel)

	if asked != "https://example.com/a" {
		t.Errorf("imported %q", asked)
	}
	p := e.Post()
	if p.Headline != "Importada" || p.SiteURL != "example.com" || p.Subtitle != post.Default().Subtitle {
		t.Errorf("import not merged: %+v", p)
	}
	if m.busy != "" || m.failed {
		t.Errorf("status after import: busy=%q failed=%v", m.busy, m.failed)
	}
}

func TestEditorImportError(t *testing.T) {
	m, e, _ := newTestModel(t, editorActions{
		Import: func(context.Context, string) (metadata.Result, error) {
			return metadata.Result{}, perrors.New(perrors.ErrCodeImportEmpty, "the page returned no content")
		},
	})
	m = keys(m, "ctrl+o", "https://example.com").(EditorModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, _ = next.Update(cmd())
	m = next.(EditorModel)

	if !m.failed || m.status != "the page returned no content" {
		t.Errorf("status = %q failed=%v", m.status, m.failed)
	}
	if e.Post().Headline != post.Default().Headline {
		t.Error("a failed import must not change the post")
	}
}

func TestEditorExport(t *testing.T) {
	var exported post.Post
	m, _, _ := newTestModel(t, editorActions{
		Export: func(_ context.Context, p post.Post) (*export.Artifact, error) {
			exported = p
			return &export.Artifact{Path: "out/gera-post-geral-1.png"}, nil
		},
	})
	m = keys(m, "3").(EditorModel)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(EditorModel)
	if cmd == nil {
		t.Fatal("ctrl+s should start an export")
	}

	// A second export while one runs is refused.
	next, again := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if again != nil || !next.(EditorModel).failed {
		t.Error("second export should be refused while busy")
	}

	next, _ = m.Update(cmd())
	m = next.(EditorModel)
	if exported.TemplateID != 3 {
		t.Errorf("exported template %d, want 3", exported.TemplateID)
	}
	if !strings.Contains(m.status, "gera-post-geral-1.png") || m.failed {
		t.Errorf("status = %q", m.status)
	}
}

func TestEditorSaveError(t *testing.T) {
	m, _, _ := newTestModel(t, editorActions{})
	next, _ := m.Update(saveErrMsg{err: perrors.Wrap(perrors.ErrCodePersistenceWrite, errors.New("timeout"), "could not save the draft")})
	m = next.(EditorModel)
	if !m.failed || m.status != "could not save the draft" {
		t.Errorf("status = %q", m.status)
	}
}

func TestEditorSampleAndReset(t *testing.T) {
	m, e, _ := newTestModel(t, editorActions{})
	m = keys(m, "ctrl+n").(EditorModel)
	if e.Post().Category != "Economia" {
		t.Fatalf("sample not loaded: %s", e.Post().Category)
	}
	keys(m, "tab", "ctrl+r")
	if e.Tab() != control.TabFeed || e.Post() != post.Default() {
		t.Error("reset should restore the defaults on the feed tab")
	}
}

func TestEditorView(t *testing.T) {
	m, _, _ := newTestModel(t, editorActions{})
	m = keys(m, "2").(EditorModel)
	view := m.View()
	for _, want := range []string{"Full Dark Overlay", "1080x1350", "Feed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestTemplateListModel(t *testing.T) {
	m := NewTemplateListModel(4)
	if m.Cursor != 3 {
		t.Fatalf("cursor = %d, want 3", m.Cursor)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(TemplateListModel)
	if got.Selected == nil || got.Selected.ID != 5 || cmd == nil {
		t.Errorf("selected %+v", got.Selected)
	}

	next, _ = NewTemplateListModel(1).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	if sel := next.(TemplateListModel).Selected; sel == nil || sel.ID != 9 {
		t.Errorf("digit pick: %+v", sel)
	}

	if !strings.Contains(m.View(), "Classic Split") {
		t.Error("view should list the templates")
	}
}

func TestDigit(t *testing.T) {
	for s, want := range map[string]int{"1": 1, "9": 9} {
		if got, ok := digit(s); !ok || got != want {
			t.Errorf("digit(%q) = %d, %v", s, got, ok)
		}
	}
	for _, s := range []string{"0", "a", "10", ""} {
		if _, ok := digit(s); ok {
			t.Errorf("digit(%q) should fail", s)
		}
	}
}

func TestEditorInputPrompt(t *testing.T) {
	m, _, _ := newTestModel(t, editorActions{})
	m = keys(m, "ctrl+o", "exemplo.com").(EditorModel)
	if view := m.View(); !strings.Contains(view, "URL: ") || !strings.Contains(view, "exemplo.com") {
		t.Errorf("footer should show the URL prompt: %q", view)
	}

	m = keys(m, "esc").(EditorModel)
	if m.mode != modeNone || m.input.Value() != "" {
		t.Errorf("esc should close and clear the input: mode=%d value=%q", m.mode, m.input.Value())
	}
}
