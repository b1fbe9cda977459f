// Package control is the editing surface over the composition model.
//
// An [Editor] owns the current post. Every change goes through
// [Editor.UpdateData], which applies a patch, normalizes the result and
// hands the new snapshot to the persistence writer. The higher-level
// operations (tab selection, logo presets, imports, uploads) are all
// expressed as patches, so they share that one path.
//
// Selecting the feed or story tab also switches the post's format. That
// coupling lives in the [TabOverrides] table rather than in a side effect
// of rendering the tab.
package control

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/geometry"
	"github.com/ncassessoria/gerapost/pkg/metadata"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/templates"
)

// Tab is a section of the control panel.
type Tab string

// Tabs in display order.
const (
	TabFeed  Tab = "feed"
	TabStory Tab = "story"
	TabLogo  Tab = "logo"
	TabEdit  Tab = "edit"
)

// Tabs lists the tabs in display order.
func Tabs() []Tab { return []Tab{TabFeed, TabStory, TabLogo, TabEdit} }

// Label is the tab's caption.
func (t Tab) Label() string {
	switch t {
	case TabFeed:
		return "Feed"
	case TabStory:
		return "Story"
	case TabLogo:
		return "Logo"
	case TabEdit:
		return "Editar"
	}
	return string(t)
}

// ParseTab returns the tab named s.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tabs() {
		if t == known {
			return t, nil
		}
	}
	return "", perrors.New(perrors.ErrCodeInvalidInput, "unknown tab %q", s)
}

// TabOverrides holds the patch applied when a tab is selected. Tabs
// without an entry change nothing.
var TabOverrides = map[Tab]post.Patch{
	TabFeed:  {Format: post.Ptr(geometry.Feed)},
	TabStory: {Format: post.Ptr(geometry.Story)},
}

// LogoPreset is a quick logo position.
type LogoPreset string

// Logo presets.
const (
	LogoTopLeft     LogoPreset = "tl"
	LogoTopRight    LogoPreset = "tr"
	LogoBottomLeft  LogoPreset = "bl"
	LogoBottomRight LogoPreset = "br"
	LogoCenter      LogoPreset = "c"
)

// logoPresets maps presets to logo centre percentages.
var logoPresets = map[LogoPreset][2]float64{
	LogoTopLeft:     {15, 10},
	LogoTopRight:    {85, 10},
	LogoBottomLeft:  {15, 90},
	LogoBottomRight: {85, 90},
	LogoCenter:      {50, 50},
}

// LogoPresets lists the presets in display order.
func LogoPresets() []LogoPreset {
	return []LogoPreset{LogoTopLeft, LogoTopRight, LogoCenter, LogoBottomLeft, LogoBottomRight}
}

// Persister receives every new snapshot. The debounced store writer
// implements it.
type Persister interface {
	Schedule(p post.Post)
}

type noPersister struct{}

func (noPersister) Schedule(post.Post) {}

// Editor holds the post being edited. It is safe for concurrent use.
type Editor struct {
	// order is held across a mutation and its Schedule call so snapshots
	// reach the persister in the order they were made.
	order     sync.Mutex
	mu        sync.RWMutex
	post      post.Post
	tab       Tab
	persister Persister
	logger    *log.Logger
	onChange  func(post.Post)
}

// Option configures an Editor.
type Option func(*Editor)

// WithPersister sets the snapshot receiver.
func WithPersister(p Persister) Option { return func(e *Editor) { e.persister = p } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(e *Editor) { e.logger = l } }

// OnChange registers fn to run after every update with the new snapshot.
func OnChange(fn func(post.Post)) Option { return func(e *Editor) { e.onChange = fn } }

// NewEditor creates an editor on initial, on the feed tab.
func NewEditor(initial post.Post, opts ...Option) *Editor {
	e := &Editor{
		post:      initial.Normalize(),
		tab:       TabFeed,
		persister: noPersister{},
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.persister == nil {
		e.persister = noPersister{}
	}
	return e
}

// Post returns the current snapshot.
func (e *Editor) Post() post.Post {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.post
}

// Tab returns the selected tab.
func (e *Editor) Tab() Tab {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tab
}

// UpdateData applies patch and schedules the result for saving. It
// returns the new snapshot.
func (e *Editor) UpdateData(patch post.Patch) post.Post {
	p, _ := e.mutate(func() bool {
		e.post = e.post.Apply(patch)
		return true
	})
	return p
}

// mutate runs fn under the write lock and, when fn reports a change,
// schedules the new snapshot before any later mutation can. onChange runs
// outside both locks.
func (e *Editor) mutate(fn func() bool) (post.Post, bool) {
	e.order.Lock()
	e.mu.Lock()
	changed := fn()
	p := e.post
	e.mu.Unlock()
	if changed {
		e.persister.Schedule(p)
	}
	e.order.Unlock()

	if changed && e.onChange != nil {
		e.onChange(p)
	}
	return p, changed
}

// SelectTab switches tabs and applies the tab's override in the same
// step.
func (e *Editor) SelectTab(t Tab) (post.Post, error) {
	if _, err := ParseTab(string(t)); err != nil {
		return e.Post(), err
	}
	p, changed := e.mutate(func() bool {
		e.tab = t
		patch, ok := TabOverrides[t]
		if ok {
			e.post = e.post.Apply(patch)
		}
		return ok
	})
	if changed {
		e.logger.Debug("tab selected", "tab", t, "format", p.Format)
	}
	return p, nil
}

// SelectTemplate switches to template id.
func (e *Editor) SelectTemplate(id int) (post.Post, error) {
	if _, ok := templates.Lookup(id); !ok {
		return e.Post(), perrors.New(perrors.ErrCodeInvalidTemplate, "unknown template %d (choose 1-%d)", id, post.TemplateCount)
	}
	return e.UpdateData(post.Patch{TemplateID: post.Ptr(id)}), nil
}

// SetLogoPreset moves the logo to a preset position, keeping its scale.
func (e *Editor) SetLogoPreset(preset LogoPreset) (post.Post, error) {
	xy, ok := logoPresets[preset]
	if !ok {
		return e.Post(), perrors.New(perrors.ErrCodeInvalidInput, "unknown logo position %q (use tl, tr, bl, br or c)", preset)
	}
	return e.UpdateData(post.Patch{Logo: &post.LogoPatch{X: post.Ptr(xy[0]), Y: post.Ptr(xy[1])}}), nil
}

// NudgeLogo moves the logo by dx, dy percentage points and scales it by
// ds. The result is clamped by normalization.
func (e *Editor) NudgeLogo(dx, dy, ds float64) post.Post {
	cur := e.Post().Logo
	return e.UpdateData(post.Patch{Logo: &post.LogoPatch{
		X:     post.Ptr(cur.X + dx),
		Y:     post.Ptr(cur.Y + dy),
		Scale: post.Ptr(cur.Scale + ds),
	}})
}

// ApplyImport merges the fields an import found. Fields it did not find
// keep their current values.
func (e *Editor) ApplyImport(res metadata.Result) post.Post {
	if res.Empty() {
		return e.Post()
	}
	return e.UpdateData(res.Patch())
}

// LoadSample fills the editor with the sample news story.
func (e *Editor) LoadSample() post.Post {
	return e.UpdateData(post.MockNews())
}

// Reset returns to the defaults and the feed tab, as after signing out.
func (e *Editor) Reset() post.Post {
	p, _ := e.mutate(func() bool {
		e.post = post.Default()
		e.tab = TabFeed
		return true
	})
	return p
}

// Replace swaps in a freshly loaded post without scheduling a write, as
// when a draft is read after signing in.
func (e *Editor) Replace(p post.Post) {
	p = p.Normalize()
	e.mu.Lock()
	e.post = p
	e.mu.Unlock()
	if e.onChange != nil {
		e.onChange(p)
	}
}

// String summarises the editor state for logs.
func (e *Editor) String() string {
	p := e.Post()
	return fmt.Sprintf("tab=%s template=%d format=%s", e.Tab(), p.TemplateID, p.Format)
}
