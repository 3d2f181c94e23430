// Package tui provides the Bubble Tea host around the replay engine:
// one pane per source, a shared timeline, and the navigation hotkeys.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pwnmux/pwnmux/internal/config"
	"github.com/pwnmux/pwnmux/internal/engine"
	"github.com/pwnmux/pwnmux/internal/layout"
	"github.com/pwnmux/pwnmux/internal/render"
)

// ── Styles ────────────

var (
	headerBase = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Source is one stream the TUI feeds into the engine.
type Source struct {
	ID     string
	Label  string // fallback pane label until the stream declares a view
	Chunks <-chan string
}

// chunkMsg delivers one stream chunk into the update loop, which is the
// single goroutine all engine calls run on.
type chunkMsg struct {
	idx  int
	data string
	ok   bool
}

// ── Key map ────────────

type keyMap struct {
	Prev key.Binding
	Next key.Binding
	Last key.Binding
	Quit key.Binding
}

func newKeyMap(h config.Hotkeys) keyMap {
	return keyMap{
		Prev: key.NewBinding(key.WithKeys(h.Prev), key.WithHelp(h.Prev, "back")),
		Next: key.NewBinding(key.WithKeys(h.Next), key.WithHelp(h.Next, "forward")),
		Last: key.NewBinding(key.WithKeys(h.Last), key.WithHelp(h.Last, "latest")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ── Pane buffers (the engine's sink) ────────────

type pane struct {
	id      string
	label   string
	content string
	vp      viewport.Model
	sized   bool
}

// buffers receive the engine's rendered output. The engine only runs
// inside Update, so no locking is needed.
type buffers struct {
	panes []*pane
	byID  map[string]*pane
}

// WriteSession stores a session's freshly rendered segment, stripping
// the repaint prefix the emitter adds for real terminals.
func (b *buffers) WriteSession(id string, data string) {
	p := b.byID[id]
	if p == nil {
		return
	}
	data = strings.TrimPrefix(data, render.ClearScreen+render.HideCursor)
	p.content = strings.ReplaceAll(data, "\r\n", "\n")
	if p.sized {
		p.vp.SetContent(p.content)
	}
}

// ── Model ────────────

// Model is the root Bubble Tea model.
type Model struct {
	eng     *engine.Engine
	cfg     config.Config
	bufs    *buffers
	sources []Source
	keys    keyMap
	header  lipgloss.Style
	width   int
	height  int
	ready   bool
}

// New builds the model and the engine it hosts. Each source becomes a
// pane; the engine's sink points at the pane buffers.
func New(cfg config.Config, sources []Source) Model {
	bufs := &buffers{byID: make(map[string]*pane)}
	for _, s := range sources {
		p := &pane{id: s.ID, label: s.Label}
		bufs.panes = append(bufs.panes, p)
		bufs.byID[s.ID] = p
	}
	var layouts engine.LayoutRequester
	if !cfg.DisableLayouts {
		layouts = &layout.Installer{}
	}
	eng := engine.New(engine.Options{
		Sink:         bufs,
		Layouts:      layouts,
		HistoryLimit: cfg.HistoryLimit,
		TabStop:      cfg.TabStop,
	})
	return Model{
		eng:     eng,
		cfg:     cfg,
		bufs:    bufs,
		sources: sources,
		keys:    newKeyMap(cfg.Hotkeys),
		header:  headerBase.Background(lipgloss.Color(cfg.HeaderColor)),
	}
}

// Engine exposes the hosted engine, mainly to tests.
func (m Model) Engine() *engine.Engine { return m.eng }

func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.sources))
	for i := range m.sources {
		cmds[i] = waitChunk(i, m.sources[i])
	}
	return tea.Batch(cmds...)
}

func waitChunk(idx int, s Source) tea.Cmd {
	return func() tea.Msg {
		data, ok := <-s.Chunks
		return chunkMsg{idx: idx, data: data, ok: ok}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chunkMsg:
		if !msg.ok {
			// source ended; settle the detector and keep the
			// pane's last state
			m.eng.Flush(m.sources[msg.idx].ID)
			return m, nil
		}
		m.feed(m.sources[msg.idx].ID, msg.data)
		return m, waitChunk(msg.idx, m.sources[msg.idx])

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.eng.OnNavigate(engine.Previous)
		case key.Matches(msg, m.keys.Next):
			m.eng.OnNavigate(engine.Next)
		case key.Matches(msg, m.keys.Last):
			m.eng.OnNavigate(engine.Last)
		default:
			if p := m.activePane(); p != nil && p.sized {
				var cmd tea.Cmd
				p.vp, cmd = p.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanes()
		return m, nil
	}
	return m, nil
}

// feed routes one chunk through the engine: registration first, then
// the block pipeline. Pass-through output is discarded here because the
// TUI panes only show captured segments.
func (m *Model) feed(id, data string) {
	if _, ok := m.eng.ViewName(id); !ok {
		if _, rest, registered := m.eng.OnAnnouncement(id, data); registered {
			if p := m.bufs.byID[id]; p != nil {
				if name, ok := m.eng.ViewName(id); ok {
					p.label = name
				}
			}
			data = rest
		}
	}
	if data != "" {
		m.eng.OnData(id, data)
	}
}

func (m Model) activePane() *pane {
	if len(m.bufs.panes) == 0 {
		return nil
	}
	return m.bufs.panes[0]
}

// resizePanes recomputes each pane's size for the current window and
// tells the engine, which replays the cursor segment at the new width.
func (m *Model) resizePanes() {
	n := len(m.bufs.panes)
	if n == 0 || m.height < 3 {
		return
	}
	paneHeight := (m.height - 1) / n // one line reserved for the hint bar
	bodyHeight := paneHeight - 1    // one line per pane for its header
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	for _, p := range m.bufs.panes {
		if !p.sized {
			p.vp = viewport.New(m.width, bodyHeight)
			p.sized = true
		} else {
			p.vp.Width = m.width
			p.vp.Height = bodyHeight
		}
		p.vp.SetContent(p.content)
		m.eng.OnResize(p.id, m.width)
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	var rows []string
	for _, p := range m.bufs.panes {
		name, declared := m.eng.ViewName(p.id)
		label, show := headerLabel(name, declared, p.label, m.cfg.HideHeaders)
		if show {
			bar := m.header.Render(label)
			fill := m.width - lipgloss.Width(bar)
			if fill > 0 {
				bar += borderStyle.Render(strings.Repeat("─", fill))
			}
			rows = append(rows, bar)
		}
		if p.sized {
			rows = append(rows, p.vp.View())
		}
	}
	hint := hintStyle.Render("  " + m.cfg.Hotkeys.Prev + " back  " +
		m.cfg.Hotkeys.Next + " forward  " + m.cfg.Hotkeys.Last + " latest  q quit")
	rows = append(rows, hint)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// headerLabel is the seam between session metadata and pane chrome: a
// pure function from what the engine knows to an optional display label.
func headerLabel(viewName string, declared bool, fallback string, hidden bool) (string, bool) {
	if hidden {
		return "", false
	}
	if declared {
		return viewName, true
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}

// Run starts the TUI over the given sources and blocks until quit.
func Run(cfg config.Config, sources []Source) error {
	p := tea.NewProgram(New(cfg, sources), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
