package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"oscpanel/panel"
	"oscpanel/theme"
	"oscpanel/widgets"
)

// pane identifies which column has keyboard focus.
type pane int

const (
	panePresets pane = iota
	paneControls
)

// inputKind identifies what a text prompt is collecting.
type inputKind int

const (
	inputNone inputKind = iota
	inputNewRootPreset
	inputNewChildPreset
	inputRenamePreset
	inputNewLayout
	inputNewControl
	inputImportPath
	inputExportPath
	inputSetHost
	inputSetPort
)

// controlEntry is one selectable row in the flattened section list.
type controlEntry struct {
	section string // set on the first control of a section
	control *panel.Control
}

type Model struct {
	Manager *panel.Manager
	Theme   *theme.Theme

	pane     pane
	treeIdx  int
	ctrlIdx  int
	padIdx   int // pad cursor inside a selected grid control
	showHelp bool
	quitting bool

	// Mark for move/link operations on the preset tree
	markedPresetID string

	// Text prompt
	inputKind   inputKind
	inputBuffer string
	inputTarget string // preset id being renamed / child parent id
}

type UpdateMsg struct{}

func NewModel(manager *panel.Manager, th *theme.Theme) Model {
	return Model{Manager: manager, Theme: th}
}

func ListenForUpdates(manager *panel.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputKind != inputNone {
			m.handleInputKey(msg.String())
			return m, nil
		}
		m.Manager.ClearStatus()
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)
	}
	return m, nil
}

func (m *Model) handleInputKey(key string) {
	switch key {
	case "enter":
		m.commitInput()
	case "esc":
		m.inputKind = inputNone
		m.inputBuffer = ""
	case "backspace":
		if len(m.inputBuffer) > 0 {
			m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
		}
	default:
		if len(key) == 1 && key[0] >= 32 && key[0] < 127 {
			m.inputBuffer += key
		}
	}
}

func (m *Model) commitInput() {
	text := strings.TrimSpace(m.inputBuffer)
	kind, target := m.inputKind, m.inputTarget
	m.inputKind = inputNone
	m.inputBuffer = ""
	m.inputTarget = ""
	if text == "" {
		return
	}

	switch kind {
	case inputNewRootPreset:
		m.Manager.AddPreset("", text)
	case inputNewChildPreset:
		m.Manager.AddPreset(target, text)
	case inputRenamePreset:
		m.Manager.RenamePreset(target, text)
	case inputNewLayout:
		m.Manager.AddLayout(text)
	case inputNewControl:
		name, typ := parseControlInput(text)
		m.Manager.AddControl(name, "/"+panel.SanitizeName(name, panel.FallbackControl), typ)
	case inputImportPath:
		data, err := os.ReadFile(text)
		if err != nil {
			return
		}
		m.Manager.ImportLayoutData(data)
	case inputExportPath:
		data, err := m.Manager.ExportSelected()
		if err != nil {
			return
		}
		os.WriteFile(text, data, 0644)
	case inputSetHost:
		m.Manager.SetDestination(text, "")
	case inputSetPort:
		m.Manager.SetDestination("", text)
	}
}

// parseControlInput splits "Volume slider" into a name and a type; the
// trailing word counts as a type only when it names one.
func parseControlInput(text string) (string, panel.ControlType) {
	fields := strings.Fields(text)
	if len(fields) > 1 {
		last := panel.ControlType(fields[len(fields)-1])
		for _, t := range panel.ControlTypes {
			if last == t {
				return strings.Join(fields[:len(fields)-1], " "), t
			}
		}
	}
	return text, panel.ControlSlider
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	case "tab":
		if m.pane == panePresets {
			m.pane = paneControls
		} else {
			m.pane = panePresets
		}

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.Manager.SelectLayoutAt(int(key[0] - '1'))
		m.treeIdx, m.ctrlIdx, m.padIdx = 0, 0, 0

	case "N":
		m.startInput(inputNewLayout, "")
	case "D":
		m.Manager.DuplicateSelected()
	case "I":
		m.startInput(inputImportPath, "")
	case "E":
		m.startInput(inputExportPath, "")
	case "H":
		m.startInput(inputSetHost, "")
	case "O":
		m.startInput(inputSetPort, "")

	default:
		if m.pane == panePresets {
			m.handlePresetKey(key)
		} else {
			m.handleControlKey(key)
		}
	}
	return m, nil
}

func (m *Model) startInput(kind inputKind, target string) {
	m.inputKind = kind
	m.inputBuffer = ""
	m.inputTarget = target
}

func (m *Model) handlePresetKey(key string) {
	rows := m.Manager.TreeRows()
	if m.treeIdx >= len(rows) {
		m.treeIdx = max(0, len(rows)-1)
	}
	var sel *panel.TreeRow
	if len(rows) > 0 {
		sel = &rows[m.treeIdx]
	}

	switch key {
	case "j", "down":
		if m.treeIdx < len(rows)-1 {
			m.treeIdx++
		}
	case "k", "up":
		if m.treeIdx > 0 {
			m.treeIdx--
		}
	case " ", "enter":
		if sel != nil {
			m.Manager.TogglePreset(sel.ID)
		}
	case "A":
		m.startInput(inputNewRootPreset, "")
	case "a":
		if sel != nil {
			m.startInput(inputNewChildPreset, sel.ID)
		}
	case "r":
		if sel != nil {
			m.startInput(inputRenamePreset, sel.ID)
		}
	case "d":
		if sel != nil {
			m.Manager.DeletePreset(sel.ID)
		}
	case "m":
		if sel != nil {
			m.markedPresetID = sel.ID
		}
	case "p":
		if sel != nil && m.markedPresetID != "" && m.markedPresetID != sel.ID {
			m.Manager.MovePreset(m.markedPresetID, sel.ID)
			m.markedPresetID = ""
		}
	case "P":
		if m.markedPresetID != "" {
			m.Manager.MovePreset(m.markedPresetID, "")
			m.markedPresetID = ""
		}
	}
}

func (m *Model) handleControlKey(key string) {
	entries := m.controlEntries()
	if m.ctrlIdx >= len(entries) {
		m.ctrlIdx = max(0, len(entries)-1)
	}
	var c *panel.Control
	if len(entries) > 0 {
		c = entries[m.ctrlIdx].control
	}

	switch key {
	case "j", "down":
		if m.ctrlIdx < len(entries)-1 {
			m.ctrlIdx++
			m.padIdx = 0
		}
	case "k", "up":
		if m.ctrlIdx > 0 {
			m.ctrlIdx--
			m.padIdx = 0
		}
	case "c":
		m.startInput(inputNewControl, "")
	case "d":
		if c != nil {
			m.Manager.DeleteControl(c.ID)
		}
	case "g":
		// Gate the selected control behind the marked preset.
		if c != nil && m.markedPresetID != "" {
			m.Manager.LinkControlToPreset(c.ID, m.markedPresetID)
		}
	case " ", "enter":
		if c != nil {
			m.activate(c)
		}
	case "h", "left":
		m.adjust(c, -1)
	case "l", "right":
		m.adjust(c, 1)
	case "J":
		m.adjustY(c, -1)
	case "K":
		m.adjustY(c, 1)
	}
}

// activate fires the selected control's primary action.
func (m *Model) activate(c *panel.Control) {
	switch c.Type {
	case panel.ControlButton:
		m.Manager.PressButton(c.ID)
	case panel.ControlToggle:
		m.Manager.FlipToggle(c.ID)
	case panel.ControlTapTempo:
		m.Manager.Tap(c.ID)
	case panel.ControlPadGrid:
		if g := c.PadGrid; g != nil && g.Cols > 0 {
			m.Manager.HitPad(c.ID, m.padIdx/g.Cols, m.padIdx%g.Cols)
		}
	case panel.ControlColor:
		if col := c.Color; col != nil {
			m.Manager.SetColor(c.ID, col.R, col.G, col.B, col.A)
		}
	case panel.ControlSlider:
		if s := c.Slider; s != nil {
			m.Manager.SetSliderValue(c.ID, s.Value)
		}
	case panel.ControlXYPad:
		if xy := c.XYPad; xy != nil {
			m.Manager.SetXY(c.ID, xy.X, xy.Y)
		}
	case panel.ControlChoice:
		if ch := c.Choice; ch != nil {
			m.Manager.SelectChoice(c.ID, ch.Index)
		}
	}
}

// adjust moves the selected control's value left/right.
func (m *Model) adjust(c *panel.Control, dir int) {
	if c == nil {
		return
	}
	switch c.Type {
	case panel.ControlSlider:
		m.Manager.NudgeSlider(c.ID, dir)
	case panel.ControlChoice:
		m.Manager.CycleChoice(c.ID, dir)
	case panel.ControlXYPad:
		if xy := c.XYPad; xy != nil {
			m.Manager.SetXY(c.ID, xy.X+float64(dir)*0.05, xy.Y)
		}
	case panel.ControlPadGrid:
		if g := c.PadGrid; g != nil {
			total := g.Rows * g.Cols
			m.padIdx = ((m.padIdx+dir)%total + total) % total
		}
	}
}

// adjustY moves the vertical axis of an XY pad.
func (m *Model) adjustY(c *panel.Control, dir int) {
	if c == nil || c.Type != panel.ControlXYPad || c.XYPad == nil {
		return
	}
	m.Manager.SetXY(c.ID, c.XYPad.X, c.XYPad.Y+float64(dir)*0.05)
}

// controlEntries flattens the sections for cursor navigation.
func (m Model) controlEntries() []controlEntry {
	var entries []controlEntry
	for _, sec := range m.Manager.Sections() {
		for i, c := range sec.Controls {
			e := controlEntry{control: c}
			if i == 0 {
				e.section = sec.Title
			}
			entries = append(entries, e)
		}
	}
	return entries
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	host, port := m.Manager.Destination()
	header := headerStyle.Render(fmt.Sprintf("oscpanel  →  %s:%s", host, port)) +
		"   " + m.renderLayoutTabs()

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	if m.inputKind != inputNone {
		out.WriteString(m.renderPrompt())
		return out.String()
	}
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(keyHelp))
		out.WriteString("\n\n")
		out.WriteString(dimStyle.Render("?:close help"))
		return out.String()
	}

	left := m.renderTree()
	right := m.renderSections()
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(32).Render(left),
		right,
	))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(m.helpLine()))

	if status := m.Manager.Status(); status != "" {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(status))
	}

	return out.String()
}

func (m Model) renderLayoutTabs() string {
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var tabs []string
	for i, info := range m.Manager.LayoutList() {
		label := fmt.Sprintf("%d:%s", i+1, info.Name)
		if info.Selected {
			tabs = append(tabs, selStyle.Render(label))
		} else {
			tabs = append(tabs, dimStyle.Render(label))
		}
	}
	if len(tabs) == 0 {
		return dimStyle.Render("(no layouts - N to create)")
	}
	return strings.Join(tabs, "  ")
}

func (m Model) renderPrompt() string {
	labels := map[inputKind]string{
		inputNewRootPreset:  "New preset name",
		inputNewChildPreset: "New child preset name",
		inputRenamePreset:   "Rename preset to",
		inputNewLayout:      "New layout name",
		inputNewControl:     "New control (name, optional type)",
		inputImportPath:     "Import layout from file",
		inputExportPath:     "Export layout to file",
		inputSetHost:        "OSC host",
		inputSetPort:        "OSC port",
	}
	var out strings.Builder
	out.WriteString("─────────────────────────────────────────────────\n")
	out.WriteString(fmt.Sprintf("\n%s: %s_\n", labels[m.inputKind], m.inputBuffer))
	out.WriteString("\n[enter] confirm  [esc] cancel\n")
	out.WriteString("\n─────────────────────────────────────────────────\n")
	return out.String()
}

func (m Model) renderTree() string {
	sym := m.Theme.Symbols
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	onStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	maskedStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	offStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	markStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var out strings.Builder
	out.WriteString("Presets\n")
	rows := m.Manager.TreeRows()
	if len(rows) == 0 {
		out.WriteString(offStyle.Render("  (none - A to add)"))
		return out.String()
	}
	for i, row := range rows {
		prefix := "  "
		if m.pane == panePresets && i == m.treeIdx {
			prefix = cursorStyle.Render("> ")
		}
		glyph := string(sym.PresetOff)
		style := offStyle
		switch {
		case row.Enabled:
			glyph = string(sym.PresetOn)
			style = onStyle
		case row.On:
			// switched on, but a disabled ancestor masks it
			glyph = string(sym.Masked)
			style = maskedStyle
		}
		mark := ""
		if row.ID == m.markedPresetID {
			mark = markStyle.Render(" *")
		}
		out.WriteString(prefix)
		out.WriteString(strings.Repeat("  ", row.Depth))
		out.WriteString(style.Render(glyph + " " + row.Name))
		out.WriteString(mark)
		out.WriteString("\n")
	}
	return out.String()
}

func (m Model) renderSections() string {
	titleStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	entries := m.controlEntries()
	if len(entries) == 0 {
		return dimStyle.Render("No visible controls - c to add one, or switch a preset on.")
	}

	var out strings.Builder
	for i, e := range entries {
		if e.section != "" {
			if i > 0 {
				out.WriteString("\n")
			}
			out.WriteString(titleStyle.Render(e.section))
			out.WriteString("\n")
		}
		selected := m.pane == paneControls && i == m.ctrlIdx
		out.WriteString(m.renderControl(e.control, selected))
	}
	return out.String()
}

func (m Model) renderControl(c *panel.Control, selected bool) string {
	sym := m.Theme.Symbols
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	nameStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())

	prefix := "  "
	if selected {
		prefix = cursorStyle.Render("> ")
	}
	name := nameStyle.Render(fmt.Sprintf("%-16s", c.Name))

	var body string
	switch c.Type {
	case panel.ControlSlider:
		s := c.Slider
		body = widgets.RenderSlider(s.Value, s.Min, s.Max, 20,
			sym.SliderFill, sym.SliderTrack, m.Theme.Active(), m.Theme.Muted()) +
			dimStyle.Render(fmt.Sprintf(" %.2f", s.Value))
	case panel.ControlButton:
		body = selStyle.Render("[ fire ]")
	case panel.ControlToggle:
		if c.Toggle.On {
			body = selStyle.Render(string(sym.On) + " on")
		} else {
			body = dimStyle.Render(string(sym.Off) + " off")
		}
	case panel.ControlXYPad:
		body = dimStyle.Render(fmt.Sprintf("x %.2f  y %.2f", c.XYPad.X, c.XYPad.Y))
	case panel.ControlColor:
		col := c.Color
		swatch := lipgloss.NewStyle().
			Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x",
				int(col.R*255), int(col.G*255), int(col.B*255)))).
			Render("■■")
		body = swatch + dimStyle.Render(fmt.Sprintf(" r%.2f g%.2f b%.2f a%.2f", col.R, col.G, col.B, col.A))
	case panel.ControlTapTempo:
		if c.TapTempo.BPM > 0 {
			body = selStyle.Render(fmt.Sprintf("%.1f bpm", c.TapTempo.BPM)) + dimStyle.Render("  (space = tap)")
		} else {
			body = dimStyle.Render("tap to set tempo")
		}
	case panel.ControlPadGrid:
		g := c.PadGrid
		cursor := -1
		if selected {
			cursor = m.padIdx
		}
		grid := widgets.RenderPadGrid(g.States, g.Rows, g.Cols, cursor,
			sym.PadOn, sym.PadOff, m.Theme.Active(), m.Theme.Muted(), m.Theme.Cursor())
		return prefix + name + "\n" + indent(grid, 4) + "\n"
	case panel.ControlChoice:
		body = widgets.RenderChoice(c.Choice.Options, c.Choice.Index,
			lipgloss.NewStyle().Foreground(m.Theme.Active()), dimStyle)
	}
	return prefix + name + body + "\n"
}

func (m Model) helpLine() string {
	common := "tab:pane  1-9:layout  ?:help  q:quit"
	if m.pane == panePresets {
		return "presets  j/k:nav  space:toggle  a/A:add  r:rename  d:del  m:mark  p/P:move  | " + common
	}
	return "controls  j/k:nav  space:act  h/l:adjust  c:add  d:del  g:gate(marked)  | " + common
}

var keyHelp = []widgets.KeySection{
	{Title: "Global", Keys: []widgets.KeyBinding{
		{Key: "tab", Desc: "switch pane"},
		{Key: "1-9", Desc: "select layout"},
		{Key: "N", Desc: "new layout"},
		{Key: "D", Desc: "duplicate layout"},
		{Key: "I / E", Desc: "import / export layout file"},
		{Key: "H / O", Desc: "set OSC host / port"},
		{Key: "q", Desc: "quit"},
	}},
	{Title: "Presets", Keys: []widgets.KeyBinding{
		{Key: "j / k", Desc: "move cursor"},
		{Key: "space", Desc: "toggle preset"},
		{Key: "a / A", Desc: "add child / root preset"},
		{Key: "r", Desc: "rename preset"},
		{Key: "d", Desc: "delete preset and subtree"},
		{Key: "m", Desc: "mark preset"},
		{Key: "p / P", Desc: "move marked under cursor / to top level"},
	}},
	{Title: "Controls", Keys: []widgets.KeyBinding{
		{Key: "j / k", Desc: "move cursor"},
		{Key: "space", Desc: "press / toggle / tap / hit pad"},
		{Key: "h / l", Desc: "nudge value, cycle option, move pad cursor"},
		{Key: "J / K", Desc: "move XY pad vertically"},
		{Key: "c", Desc: "add control (name, optional type)"},
		{Key: "d", Desc: "delete control"},
		{Key: "g", Desc: "link control to marked preset"},
	}},
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
