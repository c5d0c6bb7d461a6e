// Package tui provides a Bubble Tea terminal client for corkboard. It is a
// thin surface over the sync engine: every edit goes through the engine,
// which handles debouncing and background saves on its own.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mtaverne/corkboard/internal/client"
)

const pollTick = 200 * time.Millisecond

// Options configure the terminal client.
type Options struct {
	Server  string // host:port or URL of the board server
	BoardID string // optional identifier to open, as if pasted into the address bar
}

// Run boots the terminal client until the user quits.
func Run(ctx context.Context, opts Options) error {
	transport, err := client.NewHTTPTransport(opts.Server)
	if err != nil {
		return err
	}

	address := newAddressSurface(transport.BoardURL)
	engine := client.NewEngine(transport,
		client.WithAddressBar(address),
		client.WithShareURL(transport.BoardURL),
	)
	engine.Start(ctx, opts.BoardID)
	defer engine.Shutdown()

	m := newModel(ctx, engine, address)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

type tickMsg time.Time

type shareMsg struct {
	result client.ShareResult
	err    error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	engine  *client.Engine
	address *addressSurface

	snapshot client.Snapshot
	selected int

	editing bool
	input   textinput.Model

	confirmQuit bool
	notice      string

	width  int
	height int
}

func newModel(ctx context.Context, engine *client.Engine, address *addressSurface) Model {
	in := textinput.New()
	in.Placeholder = "note text"
	in.CharLimit = 280

	return Model{
		ctx:      ctx,
		engine:   engine,
		address:  address,
		snapshot: engine.Snapshot(),
		input:    in,
	}
}

// Init starts the snapshot poll loop.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(pollTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) shareCmd() tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		res, err := engine.Share(ctx)
		return shareMsg{result: res, err: err}
	}
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		m.snapshot = m.engine.Snapshot()
		if m.selected >= len(m.snapshot.Notes) {
			m.selected = len(m.snapshot.Notes) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		return m, tick()

	case shareMsg:
		if msg.err != nil {
			m.notice = "share failed: " + msg.err.Error()
		} else if msg.result.Copied {
			m.notice = "copied " + msg.result.Address
		} else {
			m.notice = "share: " + msg.result.Address
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		switch msg.String() {
		case "y", "Y":
			m.engine.Shutdown()
			return m, tea.Quit
		default:
			m.confirmQuit = false
			m.notice = ""
			return m, nil
		}
	}

	if m.editing {
		switch msg.Type {
		case tea.KeyEnter:
			if n := m.selectedNote(); n != nil {
				_ = m.engine.SetText(n.ID, m.input.Value())
			}
			m.editing = false
			m.input.Blur()
			return m, nil
		case tea.KeyEsc:
			m.editing = false
			m.input.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.tryQuit()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.snapshot.Notes)-1 {
			m.selected++
		}

	case "n":
		if note, err := m.engine.AddNote(); err == nil {
			m.snapshot = m.engine.Snapshot()
			m.selected = indexOf(m.snapshot, note.ID)
		}

	case "enter", "e":
		if n := m.selectedNote(); n != nil {
			m.input.SetValue(n.Text)
			m.input.CursorEnd()
			m.input.Focus()
			m.editing = true
			return m, textinput.Blink
		}

	case "c":
		if n := m.selectedNote(); n != nil {
			_ = m.engine.SetColor(n.ID, nextPaletteColor(n.Color))
		}

	case "x", "delete":
		if n := m.selectedNote(); n != nil {
			if err := m.engine.RemoveNote(n.ID); err != nil {
				m.notice = err.Error()
			} else {
				m.snapshot = m.engine.Snapshot()
			}
		}

	case "left":
		m.nudge(-4, 0)
	case "right":
		m.nudge(4, 0)
	case "shift+up":
		m.nudge(0, -2)
	case "shift+down":
		m.nudge(0, 2)

	case "s":
		m.notice = "sharing..."
		return m, m.shareCmd()
	}

	return m, nil
}

// tryQuit raises the exit warning while unsaved edits are still being
// written; otherwise it quits immediately.
func (m Model) tryQuit() (tea.Model, tea.Cmd) {
	snap := m.engine.Snapshot()
	if snap.Dirty && snap.Status == client.StatusSaving {
		m.confirmQuit = true
		m.notice = "unsaved changes are still being written - quit anyway? (y/n)"
		return m, nil
	}
	m.engine.Shutdown()
	return m, tea.Quit
}

func (m *Model) nudge(dx, dy float64) {
	if n := m.selectedNote(); n != nil {
		_ = m.engine.MoveNote(n.ID, dx, dy)
	}
}

func (m Model) selectedNote() *boardNote {
	if m.selected < 0 || m.selected >= len(m.snapshot.Notes) {
		return nil
	}
	n := m.snapshot.Notes[m.selected]
	return &n
}

func indexOf(snap client.Snapshot, id string) int {
	for i, n := range snap.Notes {
		if n.ID == id {
			return i
		}
	}
	return 0
}
