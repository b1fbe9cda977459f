package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ncassessoria/gerapost/pkg/control"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/export"
	"github.com/ncassessoria/gerapost/pkg/metadata"
	"github.com/ncassessoria/gerapost/pkg/post"
	"github.com/ncassessoria/gerapost/pkg/render"
	"github.com/ncassessoria/gerapost/pkg/scene"
	"github.com/ncassessoria/gerapost/pkg/templates"
)

// List styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorAccent).Padding(0, 2)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 2)
	previewStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// =============================================================================
// TemplateListModel - Interactive template selection
// =============================================================================

// TemplateListModel is the bubbletea model for picking a template.
type TemplateListModel struct {
	Templates []templates.Template
	Cursor    int
	Current   int // id of the draft's template
	Selected  *templates.Template
}

// NewTemplateListModel creates a picker with the cursor on current.
func NewTemplateListModel(current int) TemplateListModel {
	all := templates.All()
	cursor := min(max(current-1, 0), len(all)-1)
	return TemplateListModel{Templates: all, Cursor: cursor, Current: current}
}

func (m TemplateListModel) Init() tea.Cmd {
	return nil
}

func (m TemplateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Templates)-1 {
			m.Cursor++
		}
	case "enter":
		t := m.Templates[m.Cursor]
		m.Selected = &t
		return m, tea.Quit
	default:
		if id, ok := digit(s); ok {
			if t, found := templates.Lookup(id); found {
				m.Cursor = id - 1
				m.Selected = &t
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m TemplateListModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select Template"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  1-9 pick  ⏎ select  q quit"))
	b.WriteString("\n\n")
	b.WriteString(templateTable(m.Templates, m.Cursor, m.Current))
	b.WriteString("\n")
	return b.String()
}

// templateTable renders the template list. A negative cursor draws no
// cursor.
func templateTable(ts []templates.Template, cursor, current int) string {
	rows := make([][]string, 0, len(ts))
	for i, t := range ts {
		mark := "  "
		if i == cursor {
			mark = "▸ "
		}
		cur := ""
		if t.ID == current {
			cur = "✓"
		}
		rows = append(rows, []string{mark, fmt.Sprint(t.ID), t.Name, cur})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Template", "Current").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case row < len(ts) && ts[row].ID == current:
				return lipgloss.NewStyle().Foreground(colorAccent)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// =============================================================================
// EditorModel - Terminal editor
// =============================================================================

// fieldKindTUI is how the editor changes a field.
type fieldKindTUI int

const (
	fieldText fieldKindTUI = iota
	fieldToggle
	fieldCycle
)

// editField is one row of the edit tab. key is a draft set key.
type editField struct {
	key     string
	label   string
	kind    fieldKindTUI
	options []string // fieldCycle
}

var editFields = []editField{
	{key: "headline", label: "Headline"},
	{key: "subtitle", label: "Subtitle"},
	{key: "category", label: "Category"},
	{key: "showCategory", label: "Show category", kind: fieldToggle},
	{key: "categoryBgColor", label: "Tag color"},
	{key: "imageUrl", label: "Image URL"},
	{key: "imagePosition", label: "Image position", kind: fieldCycle, options: []string{"left", "center", "right"}},
	{key: "siteUrl", label: "Site"},
	{key: "showUrl", label: "Show site", kind: fieldToggle},
	{key: "instagram", label: "Instagram"},
	{key: "showInsta", label: "Show Instagram", kind: fieldToggle},
	{key: "themeColor", label: "Theme color"},
	{key: "fontFamily", label: "Font", kind: fieldCycle, options: post.Fonts()},
}

// fieldValue returns the current value of a draft field as text.
func fieldValue(p post.Post, key string) string {
	switch key {
	case "headline":
		return p.Headline
	case "subtitle":
		return p.Subtitle
	case "category":
		return p.Category
	case "showCategory":
		return fmt.Sprint(p.ShowCategory)
	case "categoryBgColor":
		return p.CategoryBgColor
	case "imageUrl":
		return p.ImageURL
	case "imagePosition":
		return string(p.ImagePosition)
	case "siteUrl":
		return p.SiteURL
	case "showUrl":
		return fmt.Sprint(p.ShowURL)
	case "instagram":
		return p.Instagram
	case "showInsta":
		return fmt.Sprint(p.ShowInsta)
	case "themeColor":
		return p.ThemeColor
	case "fontFamily":
		return p.FontFamily
	}
	return ""
}

// inputMode is what the line editor is collecting.
type inputMode int

const (
	modeNone inputMode = iota
	modeField
	modeImportURL
	modeLogoPath
	modeBackgroundPath
)

// Async results.
type (
	exportDoneMsg struct {
		art *export.Artifact
		err error
	}
	importDoneMsg struct {
		res metadata.Result
		err error
	}
	saveErrMsg struct{ err error }
)

// editorActions are the slow operations the editor runs off the UI loop.
type editorActions struct {
	Export func(ctx context.Context, p post.Post) (*export.Artifact, error)
	Import func(ctx context.Context, url string) (metadata.Result, error)
}

// Logo nudge steps.
const (
	logoStep      = 1.0
	logoScaleStep = 0.1
)

// logoKeys maps numpad-like keys to logo presets.
var logoKeys = map[string]control.LogoPreset{
	"7": control.LogoTopLeft,
	"9": control.LogoTopRight,
	"1": control.LogoBottomLeft,
	"3": control.LogoBottomRight,
	"5": control.LogoCenter,
}

// EditorModel is the bubbletea model of the terminal editor.
type EditorModel struct {
	ctx     context.Context
	editor  *control.Editor
	actions editorActions

	cursor int // template row on format tabs, field row on the edit tab
	mode   inputMode
	input  textinput.Model

	status string
	failed bool
	busy   string

	width, height int
}

// NewEditorModel creates the editor view over e.
func NewEditorModel(ctx context.Context, e *control.Editor, actions editorActions) EditorModel {
	ti := textinput.New()
	ti.CharLimit = 2048
	ti.Cursor.SetMode(cursor.CursorStatic)
	return EditorModel{
		ctx:     ctx,
		editor:  e,
		actions: actions,
		cursor:  e.Post().TemplateID - 1,
		input:   ti,
		width:   100,
		height:  32,
	}
}

// inputPrompts label the line editor in the footer.
var inputPrompts = map[inputMode]string{
	modeImportURL:      "URL: ",
	modeLogoPath:       "Logo file: ",
	modeBackgroundPath: "Background file: ",
}

// openInput starts collecting a line of input prefilled with value.
func (m *EditorModel) openInput(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = inputPrompts[mode]
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *EditorModel) closeInput() {
	m.mode = modeNone
	m.input.Blur()
	m.input.Reset()
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m *EditorModel) setStatus(format string, args ...any) {
	m.status, m.failed = fmt.Sprintf(format, args...), false
}

func (m *EditorModel) setError(err error) {
	if perrors.Silent(err) {
		return
	}
	m.status, m.failed = perrors.UserMessage(err), true
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case exportDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("Exported %s", msg.art.Path)
		return m, nil
	case importDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.editor.ApplyImport(msg.res)
		m.setStatus("Metadata imported")
		return m, nil
	case saveErrMsg:
		m.setError(msg.err)
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeNone {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	if m.mode != modeNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateInput handles keys while the line editor is open.
func (m EditorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()
		return m.commit(mode, value)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commit applies a finished line of input.
func (m EditorModel) commit(mode inputMode, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case modeField:
		f := editFields[m.cursor]
		if err := m.setField(f.key, value); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("%s updated", f.label)
	case modeImportURL:
		if value == "" {
			return m, nil
		}
		m.busy = "Importing " + value
		return m, m.runImport(value)
	case modeLogoPath:
		if _, err := m.editor.UploadLogo(value); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Logo uploaded")
	case modeBackgroundPath:
		if _, err := m.editor.UploadBackground(value); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Background replaced")
	}
	return m, nil
}

// setField validates and applies one key=value edit.
func (m *EditorModel) setField(key, value string) error {
	patch, err := parseAssignments([]string{key + "=" + value})
	if err != nil {
		return err
	}
	if err := m.editor.Post().Apply(patch).Validate(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "%s", err)
	}
	m.editor.UpdateData(patch)
	return nil
}

// updateKey handles keys outside the line editor.
func (m EditorModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		return m.switchTab(1), nil
	case "shift+tab":
		return m.switchTab(-1), nil
	case "ctrl+s":
		if m.busy != "" {
			m.status, m.failed = m.busy+" is still running", true
			return m, nil
		}
		m.busy = "Generating image"
		return m, m.runExport()
	case "ctrl+o":
		cmd := m.openInput(modeImportURL, "")
		return m, cmd
	case "ctrl+n":
		m.editor.LoadSample()
		m.setStatus("Sample news loaded")
		return m, nil
	case "ctrl+r":
		m.editor.Reset()
		m.cursor = 0
		m.setStatus("Draft reset")
		return m, nil
	}

	switch m.editor.Tab() {
	case control.TabFeed, control.TabStory:
		return m.updateTemplates(msg), nil
	case control.TabLogo:
		return m.updateLogo(msg), nil
	default:
		return m.updateFields(msg), nil
	}
}

func (m EditorModel) switchTab(step int) EditorModel {
	tabs := control.Tabs()
	cur := 0
	for i, t := range tabs {
		if t == m.editor.Tab() {
			cur = i
		}
	}
	next := tabs[(cur+step+len(tabs))%len(tabs)]
	p, err := m.editor.SelectTab(next)
	if err != nil {
		m.setError(err)
		return m
	}
	m.cursor = 0
	if next == control.TabFeed || next == control.TabStory {
		m.cursor = p.TemplateID - 1
	}
	m.status = ""
	return m
}

func (m EditorModel) updateTemplates(msg tea.KeyMsg) EditorModel {
	switch s := msg.String(); s {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, post.TemplateCount-1)
	case "enter":
		m.selectTemplate(m.cursor + 1)
	default:
		if id, ok := digit(s); ok {
			m.selectTemplate(id)
		}
	}
	return m
}

func (m *EditorModel) selectTemplate(id int) {
	p, err := m.editor.SelectTemplate(id)
	if err != nil {
		m.setError(err)
		return
	}
	m.cursor = p.TemplateID - 1
	m.setStatus("Template %s", templates.Get(p.TemplateID).Name)
}

func (m EditorModel) updateLogo(msg tea.KeyMsg) EditorModel {
	switch s := msg.String(); s {
	case "left", "h":
		m.editor.NudgeLogo(-logoStep, 0, 0)
	case "right", "l":
		m.editor.NudgeLogo(logoStep, 0, 0)
	case "up", "k":
		m.editor.NudgeLogo(0, -logoStep, 0)
	case "down", "j":
		m.editor.NudgeLogo(0, logoStep, 0)
	case "+", "=":
		m.editor.NudgeLogo(0, 0, logoScaleStep)
	case "-":
		m.editor.NudgeLogo(0, 0, -logoScaleStep)
	case "u":
		m.openInput(modeLogoPath, "")
	case "x":
		m.editor.RemoveLogo()
		m.setStatus("Logo removed")
	default:
		if preset, ok := logoKeys[s]; ok {
			if _, err := m.editor.SetLogoPreset(preset); err != nil {
				m.setError(err)
			}
		}
	}
	return m
}

func (m EditorModel) updateFields(msg tea.KeyMsg) EditorModel {
	switch msg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(editFields)-1)
	case "b":
		m.openInput(modeBackgroundPath, "")
	case "enter", " ":
		f := editFields[m.cursor]
		cur := fieldValue(m.editor.Post(), f.key)
		switch f.kind {
		case fieldToggle:
			if err := m.setField(f.key, fmt.Sprint(cur != "true")); err != nil {
				m.setError(err)
			}
		case fieldCycle:
			if err := m.setField(f.key, nextOption(f.options, cur)); err != nil {
				m.setError(err)
			}
		default:
			m.openInput(modeField, cur)
		}
	}
	return m
}

func nextOption(options []string, cur string) string {
	for i, o := range options {
		if o == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (m EditorModel) runExport() tea.Cmd {
	p := m.editor.Post()
	ctx, fn := m.ctx, m.actions.Export
	return func() tea.Msg {
		art, err := fn(ctx, p)
		return exportDoneMsg{art: art, err: err}
	}
}

func (m EditorModel) runImport(url string) tea.Cmd {
	ctx, fn := m.ctx, m.actions.Import
	return func() tea.Msg {
		res, err := fn(ctx, url)
		return importDoneMsg{res: res, err: err}
	}
}

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	left := m.controls()
	right := m.preview(max(m.width/2-2, 24), max(m.height-8, 10))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(max(m.width/2, 40)).Render(left), right))
	b.WriteString("\n\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m EditorModel) tabBar() string {
	var parts []string
	for _, t := range control.Tabs() {
		label := t.Label()
		if t == m.editor.Tab() {
			parts = append(parts, tabActiveStyle.Render(label))
			continue
		}
		parts = append(parts, tabInactiveStyle.Render(label))
	}
	return titleStyle.Render("Gera Post") + "  " + strings.Join(parts, " ")
}

func (m EditorModel) controls() string {
	p := m.editor.Post()
	switch m.editor.Tab() {
	case control.TabFeed, control.TabStory:
		return templateTable(templates.All(), m.cursor, p.TemplateID)
	case control.TabLogo:
		return m.logoControls(p)
	default:
		return m.fieldControls(p)
	}
}

func (m EditorModel) logoControls(p post.Post) string {
	var b strings.Builder
	if !p.Logo.HasLogo() {
		b.WriteString(listDimStyle.Render("No logo. Press u to upload one."))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s %s\n", listDimStyle.Render("Position"), styleValue.Render(fmt.Sprintf("%.0f%%, %.0f%%", p.Logo.X, p.Logo.Y)))
	fmt.Fprintf(&b, "%s %s\n\n", listDimStyle.Render("Scale   "), styleValue.Render(fmt.Sprintf("%.1fx", p.Logo.Scale)))
	b.WriteString(listDimStyle.Render("←↑→↓ move  +/- scale  7 9 1 3 5 presets  u upload  x remove"))
	return b.String()
}

func (m EditorModel) fieldControls(p post.Post) string {
	var b strings.Builder
	for i, f := range editFields {
		value := shorten(fieldValue(p, f.key), 40)
		if m.mode == modeField && i == m.cursor {
			value = m.input.View()
		}
		line := fmt.Sprintf("%-15s %s", f.label, value)
		switch {
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		default:
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎ edit/toggle  b background image"))
	return b.String()
}

// Terminal cells are roughly twice as tall as they are wide; the preview
// treats one cell as cellW×cellH canvas pixels at scale 1.
const (
	cellW = 10.0
	cellH = 20.0
)

// preview draws a proportional sketch of the post: the template name and
// geometry above a box in the canvas aspect ratio holding the text.
func (m EditorModel) preview(cols, rows int) string {
	p := m.editor.Post()
	view := render.Preview(p, float64(cols)*cellW, float64(rows-2)*cellH, cellW, 1)
	size := p.Size()

	head := fmt.Sprintf("%s · %s %dx%d · %.0f%%", view.Template.Name, p.Format, size.Width, size.Height, view.Scale*100)
	w := max(int(view.Width/cellW), 12)
	h := max(int(view.Height/cellH), 6)

	var lines []string
	add := func(role scene.Role, style lipgloss.Style) {
		if n := scene.Find(view.Root, role); n != nil {
			if t := n.DisplayText(); t != "" {
				lines = append(lines, style.Render(t))
			}
		}
	}
	add(scene.RoleCategory, lipgloss.NewStyle().Foreground(lipgloss.Color(p.CategoryBgColor)).Bold(true))
	add(scene.RoleHeadline, lipgloss.NewStyle().Bold(true).Foreground(colorWhite))
	add(scene.RoleSubtitle, listDimStyle)
	for _, role := range []scene.Role{scene.RoleFooterInsta, scene.RoleFooterURL} {
		add(role, lipgloss.NewStyle().Foreground(lipgloss.Color(p.ThemeColor)))
	}

	body := lipgloss.NewStyle().Width(w - 2).Height(h - 2).Render(strings.Join(lines, "\n\n"))
	return StyleNumber.Render(head) + "\n" + previewStyle.Render(body)
}

func (m EditorModel) footer() string {
	var b strings.Builder
	switch {
	case m.mode != modeNone && m.mode != modeField:
		b.WriteString(m.input.View())
	case m.busy != "":
		b.WriteString(styleIconSpinner.Render("⠿") + " " + StyleDim.Render(m.busy+"..."))
	case m.status != "" && m.failed:
		b.WriteString(styleIconError.Render(iconError) + " " + m.status)
	case m.status != "":
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + m.status)
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab switch  ctrl+s export  ctrl+o import URL  ctrl+n sample  ctrl+r reset  esc quit"))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// digit parses a single key 1-9.
func digit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}
