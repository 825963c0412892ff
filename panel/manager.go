package panel

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"oscpanel/debug"
)

// Transport delivers resolved OSC messages. Implementations live outside
// this package (see the osc package); failures are reported, never
// retried, and never block further interaction.
type Transport interface {
	SendFloat(host, port, address string, value float32) error
	SendPresetToggle(host, port, address, presetID, presetName string, on bool) error
}

// ValueMirror optionally shadows control values to a secondary output
// (see the midi package). A nil mirror is fine.
type ValueMirror interface {
	MirrorValue(controlID string, norm float64)
}

// Autosave cadence. Mutations mark the state dirty; the loop writes at
// most once per interval.
const autosaveInterval = 2 * time.Second

// Manager is the sole mutator of the global state. Every mutation runs
// under the lock, ends with normalize, and notifies the TUI through
// UpdateChan. Readers (visibility, address resolution) only ever see
// fully applied mutations.
type Manager struct {
	mu sync.RWMutex

	transport Transport
	mirror    ValueMirror

	status string // last user-visible message (transport/import errors)

	dirtyChan chan struct{}
	stopChan  chan struct{}

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager. transport may be nil (no sends); mirror
// may be nil (no shadow output).
func NewManager(transport Transport, mirror ValueMirror) *Manager {
	return &Manager{
		transport:  transport,
		mirror:     mirror,
		dirtyChan:  make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}
}

// StartRuntime starts the autosave loop (called once at startup).
func (m *Manager) StartRuntime() {
	go m.autosaveLoop()
}

// Shutdown stops the autosave loop and flushes pending state to disk.
func (m *Manager) Shutdown() {
	close(m.stopChan)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := SaveState(S); err != nil {
		debug.Log("store", "final save: %v", err)
	}
}

// autosaveLoop debounces writes: mutations mark dirty, the ticker flushes.
func (m *Manager) autosaveLoop() {
	ticker := time.NewTicker(autosaveInterval)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-m.stopChan:
			return
		case <-m.dirtyChan:
			dirty = true
		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			m.mu.RLock()
			err := SaveState(S)
			m.mu.RUnlock()
			if err != nil {
				debug.Log("store", "autosave: %v", err)
			}
		}
	}
}

// touch runs after every mutation while the write lock is still held by
// the caller's defer: repair invariants, mark dirty, poke the TUI.
func (m *Manager) touch() {
	S.normalize()
	select {
	case m.dirtyChan <- struct{}{}:
	default:
	}
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// Status returns the last user-visible message ("" when none).
func (m *Manager) Status() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// ClearStatus drops the current status message.
func (m *Manager) ClearStatus() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = ""
}

func (m *Manager) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}

// ---- layouts ----

// AddLayout creates and selects a new empty layout.
func (m *Manager) AddLayout(name string) *Layout {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := NewLayout(name)
	S.Layouts = append(S.Layouts, l)
	S.SelectedLayoutID = l.ID
	m.touch()
	return l
}

// DeleteLayout removes a layout. Selection repair happens in normalize.
func (m *Manager) DeleteLayout(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range S.Layouts {
		if l.ID == id {
			S.Layouts = append(S.Layouts[:i], S.Layouts[i+1:]...)
			break
		}
	}
	m.touch()
}

// SelectLayout switches the active layout.
func (m *Manager) SelectLayout(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if S.layoutByID(id) != nil {
		S.SelectedLayoutID = id
	}
	m.touch()
}

// SelectLayoutAt switches the active layout by index.
func (m *Manager) SelectLayoutAt(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= 0 && idx < len(S.Layouts) {
		S.SelectedLayoutID = S.Layouts[idx].ID
	}
	m.touch()
}

// RenameLayout renames a layout.
func (m *Manager) RenameLayout(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l := S.layoutByID(id); l != nil {
		l.Name = name
	}
	m.touch()
}

// SetLayoutPort sets a layout's destination port override.
func (m *Manager) SetLayoutPort(id, port string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l := S.layoutByID(id); l != nil {
		l.Port = port
	}
	m.touch()
}

// DuplicateSelected deep-copies the selected layout and selects the copy.
func (m *Manager) DuplicateSelected() *Layout {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := S.SelectedLayout()
	if src == nil {
		return nil
	}
	dup := DuplicateLayout(src)
	S.Layouts = append(S.Layouts, dup)
	S.SelectedLayoutID = dup.ID
	m.touch()
	return dup
}

// ImportLayoutData imports a layout from file bytes and selects it. The
// error message is also posted as the status; state is untouched on
// failure.
func (m *Manager) ImportLayoutData(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := ImportLayout(data, S.LayoutNames())
	if err != nil {
		m.setStatus("import failed: %v", err)
		return err
	}
	S.Layouts = append(S.Layouts, l)
	S.SelectedLayoutID = l.ID
	m.setStatus("imported %q", l.Name)
	m.touch()
	return nil
}

// ExportSelected serializes the selected layout.
func (m *Manager) ExportSelected() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := S.SelectedLayout()
	if l == nil {
		return nil, fmt.Errorf("no layout selected")
	}
	return ExportLayout(l)
}

// ---- presets ----

// AddPreset inserts a new preset under parentID, or as a root when
// parentID is empty. Returns false when the parent vanished; per policy
// the insert is then dropped, not re-homed.
func (m *Manager) AddPreset(parentID, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return false
	}
	n := NewNode(name)
	ok := true
	if parentID == "" {
		l.PresetTree.AddRoot(n)
	} else {
		ok = l.PresetTree.InsertChild(parentID, n)
	}
	m.touch()
	return ok
}

// RenamePreset renames a preset node.
func (m *Manager) RenamePreset(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l := S.SelectedLayout(); l != nil {
		l.PresetTree.Rename(id, name)
	}
	m.touch()
}

// TogglePreset flips a preset on/off and announces the change on the
// wire as (presetID, presetName, 0|1).
func (m *Manager) TogglePreset(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return
	}
	on, ok := l.PresetTree.Toggle(id)
	if !ok {
		return
	}
	n := l.PresetTree.Get(id)
	address := "/preset/" + SanitizeName(n.Name, FallbackPreset)
	m.send(l, func(host, port string) error {
		return m.transport.SendPresetToggle(host, port, address, n.ID, n.Name, on)
	})
	m.touch()
}

// MovePreset re-parents a preset (empty newParentID means root level).
// The fallback-to-root path is accepted behavior but worth a trace.
func (m *Manager) MovePreset(id, newParentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return
	}
	if res := l.PresetTree.Move(id, newParentID); res == MovedToRoot {
		debug.Log("tree", "move %s: parent %s missing, fell back to root", id, newParentID)
		m.setStatus("preset moved to top level (original parent is gone)")
	}
	m.touch()
}

// DeletePreset removes a preset and its whole subtree, then scrubs the
// now-dangling references from every control in the layout.
func (m *Manager) DeletePreset(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return
	}
	deleted := l.PresetTree.Delete(id)
	if len(deleted) == 0 {
		return
	}
	gone := make(map[string]bool, len(deleted))
	for _, did := range deleted {
		gone[did] = true
	}
	for _, c := range l.Controls {
		kept := c.PresetIDs[:0]
		for _, pid := range c.PresetIDs {
			if !gone[pid] {
				kept = append(kept, pid)
			}
		}
		c.PresetIDs = kept
	}
	m.touch()
}

// ---- controls ----

// AddControl appends a control to the selected layout.
func (m *Manager) AddControl(name, address string, typ ControlType) *Control {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return nil
	}
	c := NewControl(name, address, typ)
	l.Controls = append(l.Controls, c)
	m.touch()
	return c
}

// DeleteControl removes a control from the selected layout.
func (m *Manager) DeleteControl(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return
	}
	for i, c := range l.Controls {
		if c.ID == id {
			l.Controls = append(l.Controls[:i], l.Controls[i+1:]...)
			break
		}
	}
	m.touch()
}

// SetControlPresets replaces a control's preset links.
func (m *Manager) SetControlPresets(id string, presetIDs []string, alwaysVisible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return
	}
	if c := l.controlByID(id); c != nil {
		c.PresetIDs = append([]string(nil), presetIDs...)
		c.AlwaysVisible = alwaysVisible
	}
	m.touch()
}

// LinkControlToPreset toggles one preset link on a control.
func (m *Manager) LinkControlToPreset(controlID, presetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := S.SelectedLayout()
	if l == nil {
		return
	}
	c := l.controlByID(controlID)
	if c == nil || !l.PresetTree.Contains(presetID) {
		return
	}
	if hasID(c.PresetIDs, presetID) {
		kept := c.PresetIDs[:0]
		for _, pid := range c.PresetIDs {
			if pid != presetID {
				kept = append(kept, pid)
			}
		}
		c.PresetIDs = kept
	} else {
		c.PresetIDs = append(c.PresetIDs, presetID)
	}
	m.touch()
}

// ---- control interactions (value change + send) ----

// SetSliderValue moves a slider and sends its value.
func (m *Manager) SetSliderValue(id string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.Slider == nil {
		return
	}
	c.Slider.Value = clamp(value, c.Slider.Min, c.Slider.Max)
	m.sendControlFloat(l, c, "", float32(c.Slider.Value))
	m.mirrorControl(c)
	m.touch()
}

// NudgeSlider moves a slider by a fraction of its range.
func (m *Manager) NudgeSlider(id string, steps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.Slider == nil {
		return
	}
	span := c.Slider.Max - c.Slider.Min
	c.Slider.Value = clamp(c.Slider.Value+float64(steps)*span/50, c.Slider.Min, c.Slider.Max)
	m.sendControlFloat(l, c, "", float32(c.Slider.Value))
	m.mirrorControl(c)
	m.touch()
}

// PressButton fires a button's value.
func (m *Manager) PressButton(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.Button == nil {
		return
	}
	m.sendControlFloat(l, c, "", float32(c.Button.Value))
	m.touch()
}

// FlipToggle flips a toggle and sends 1.0/0.0.
func (m *Manager) FlipToggle(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.Toggle == nil {
		return
	}
	c.Toggle.On = !c.Toggle.On
	m.sendControlFloat(l, c, "", BoolValue(c.Toggle.On))
	m.mirrorControl(c)
	m.touch()
}

// SetXY moves an XY pad and sends both axes as /x and /y messages.
func (m *Manager) SetXY(id string, x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.XYPad == nil {
		return
	}
	c.XYPad.X = clamp(x, 0, 1)
	c.XYPad.Y = clamp(y, 0, 1)
	m.sendControlFloat(l, c, "/x", float32(c.XYPad.X))
	m.sendControlFloat(l, c, "/y", float32(c.XYPad.Y))
	m.mirrorControl(c)
	m.touch()
}

// SetColor updates a color control and sends /r /g /b /a.
func (m *Manager) SetColor(id string, r, g, b, a float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.Color == nil {
		return
	}
	c.Color.R, c.Color.G, c.Color.B, c.Color.A = clamp(r, 0, 1), clamp(g, 0, 1), clamp(b, 0, 1), clamp(a, 0, 1)
	m.sendControlFloat(l, c, "/r", float32(c.Color.R))
	m.sendControlFloat(l, c, "/g", float32(c.Color.G))
	m.sendControlFloat(l, c, "/b", float32(c.Color.B))
	m.sendControlFloat(l, c, "/a", float32(c.Color.A))
	m.touch()
}

// Tap registers a tap on a tap-tempo control and sends the derived BPM.
// A gap longer than ResetSeconds starts a new measurement.
func (m *Manager) Tap(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.TapTempo == nil {
		return
	}
	t := c.TapTempo
	now := time.Now()
	if n := len(t.Taps); n > 0 && now.Sub(t.Taps[n-1]).Seconds() > t.ResetSeconds {
		t.Taps = nil
	}
	t.Taps = append(t.Taps, now)
	if len(t.Taps) < 2 {
		m.touch()
		return
	}
	interval := t.Taps[len(t.Taps)-1].Sub(t.Taps[0]) / time.Duration(len(t.Taps)-1)
	t.BPM = 60 / interval.Seconds()
	m.sendControlFloat(l, c, "", float32(t.BPM))
	m.touch()
}

// HitPad handles a pad press at (row, col). Momentary grids fire 1.0;
// latching grids flip the pad and send its new state. The cell address
// suffix is /<row>/<col>.
func (m *Manager) HitPad(id string, row, col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.PadGrid == nil {
		return
	}
	g := c.PadGrid
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return
	}
	suffix := fmt.Sprintf("/%d/%d", row, col)
	if g.Momentary {
		m.sendControlFloat(l, c, suffix, 1)
	} else {
		idx := row*g.Cols + col
		g.States[idx] = !g.States[idx]
		m.sendControlFloat(l, c, suffix, BoolValue(g.States[idx]))
	}
	m.touch()
}

// ReleasePad fires the release of a momentary pad.
func (m *Manager) ReleasePad(id string, row, col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.PadGrid == nil || !c.PadGrid.Momentary {
		return
	}
	if row < 0 || row >= c.PadGrid.Rows || col < 0 || col >= c.PadGrid.Cols {
		return
	}
	m.sendControlFloat(l, c, fmt.Sprintf("/%d/%d", row, col), 0)
	m.touch()
}

// SelectChoice picks an option and sends its zero-based index as a float.
func (m *Manager) SelectChoice(id string, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.Choice == nil || len(c.Choice.Options) == 0 {
		return
	}
	if idx < 0 || idx >= len(c.Choice.Options) {
		return
	}
	c.Choice.Index = idx
	m.sendControlFloat(l, c, "", float32(idx))
	m.mirrorControl(c)
	m.touch()
}

// CycleChoice steps the selection forward or backward, wrapping.
func (m *Manager) CycleChoice(id string, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, c := m.lookup(id)
	if c == nil || c.Choice == nil || len(c.Choice.Options) == 0 {
		return
	}
	n := len(c.Choice.Options)
	c.Choice.Index = ((c.Choice.Index+delta)%n + n) % n
	m.sendControlFloat(l, c, "", float32(c.Choice.Index))
	m.mirrorControl(c)
	m.touch()
}

// ---- reads for the TUI ----

// Sections returns the current control grouping for the selected layout.
func (m *Manager) Sections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := S.SelectedLayout()
	if l == nil {
		return nil
	}
	return BuildControlSections(l.PresetTree, l.Controls)
}

// TreeRow is one rendered line of the preset tree.
type TreeRow struct {
	ID      string
	Name    string
	Depth   int
	On      bool
	Enabled bool // effectively enabled (whole ancestor chain on)
}

// TreeRows returns the selected layout's preset tree flattened in
// pre-order for display.
func (m *Manager) TreeRows() []TreeRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := S.SelectedLayout()
	if l == nil {
		return nil
	}
	enabled := l.PresetTree.EnabledIDs()
	var rows []TreeRow
	l.PresetTree.Walk(func(n *Node, depth int) {
		rows = append(rows, TreeRow{
			ID:      n.ID,
			Name:    n.Name,
			Depth:   depth,
			On:      n.On,
			Enabled: enabled[n.ID],
		})
	})
	return rows
}

// LayoutInfo is a layout summary for the TUI tab bar.
type LayoutInfo struct {
	ID       string
	Name     string
	Selected bool
}

// LayoutList returns summaries of all layouts.
func (m *Manager) LayoutList() []LayoutInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]LayoutInfo, len(S.Layouts))
	for i, l := range S.Layouts {
		infos[i] = LayoutInfo{ID: l.ID, Name: l.Name, Selected: l.ID == S.SelectedLayoutID}
	}
	return infos
}

// Destination returns the host/port the selected layout sends to.
func (m *Manager) Destination() (host, port string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	host, port = S.Host, S.Port
	if l := S.SelectedLayout(); l != nil && l.Port != "" {
		port = l.Port
	}
	return host, port
}

// SetDestination updates the default OSC target.
func (m *Manager) SetDestination(host, port string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if host != "" {
		S.Host = host
	}
	if port != "" {
		S.Port = port
	}
	m.touch()
}

// ---- send plumbing ----

// lookup finds a control by id in the selected layout.
func (m *Manager) lookup(id string) (*Layout, *Control) {
	l := S.SelectedLayout()
	if l == nil {
		return nil, nil
	}
	return l, l.controlByID(id)
}

// sendControlFloat resolves the final address for a control interaction
// and hands it to the transport.
func (m *Manager) sendControlFloat(l *Layout, c *Control, suffix string, value float32) {
	base := NormalizeAddress(c.Address)
	address := ResolveAddress(base, c.Name, base+suffix)
	m.send(l, func(host, port string) error {
		return m.transport.SendFloat(host, port, address, value)
	})
}

// send validates the destination and runs fn against the transport.
// Failures are logged and surfaced as a status message; they never stop
// the interaction that triggered them.
func (m *Manager) send(l *Layout, fn func(host, port string) error) {
	if m.transport == nil {
		return
	}
	port := S.Port
	if l != nil && l.Port != "" {
		port = l.Port
	}
	if _, err := strconv.Atoi(port); err != nil {
		m.setStatus("invalid port %q", port)
		return
	}
	if err := fn(S.Host, port); err != nil {
		debug.Log("osc", "send: %v", err)
		m.setStatus("send failed: %v", err)
	}
}

// mirrorControl shadows the control's normalized value to the mirror.
func (m *Manager) mirrorControl(c *Control) {
	if m.mirror == nil {
		return
	}
	m.mirror.MirrorValue(c.ID, c.NormValue())
}
