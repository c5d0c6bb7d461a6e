package client

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"

	"github.com/mtaverne/corkboard/internal/apperr"
	"github.com/mtaverne/corkboard/internal/board"
)

// SaveStatus is the save state a user can observe.
type SaveStatus string

const (
	StatusSaved  SaveStatus = "saved"
	StatusSaving SaveStatus = "saving"
	StatusError  SaveStatus = "error"
)

// DefaultDebounce is the quiet period after the last local mutation before
// a save attempt fires.
const DefaultDebounce = time.Second

var (
	// ErrNoSuchNote is returned for mutations that name an unknown note.
	ErrNoSuchNote = errors.New("no such note")

	// ErrNoteNotBlank is returned when removing a note that still carries
	// text. Only blank notes can be removed from a board.
	ErrNoteNotBlank = errors.New("only blank notes can be removed")

	// ErrNothingToShare is returned by Share when the board holds no text
	// and has never been stored remotely. Empty boards are never created.
	ErrNothingToShare = errors.New("nothing to share yet")

	// ErrUnsavedChanges is returned by Close while edits are still being
	// written and the exit warning was not confirmed.
	ErrUnsavedChanges = errors.New("unsaved changes still being written")

	// ErrEngineStopped is returned for operations on a stopped engine.
	ErrEngineStopped = errors.New("engine stopped")
)

// AddressBar reflects the active board identifier into whatever address
// surface the user sees: the browser location, a terminal status line, a
// log.
type AddressBar interface {
	SetBoard(id string)
	Clear()
}

// Snapshot is a point-in-time copy of the engine's working copy.
type Snapshot struct {
	Notes     []board.Note
	RemoteID  string
	Status    SaveStatus
	Dirty     bool
	LastSaved time.Time
}

// ShareResult is the outcome of a Share call.
type ShareResult struct {
	Address string
	Copied  bool // false means clipboard access failed; show Address for manual copy
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithDebounce overrides the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithAddressBar wires the visible-address surface.
func WithAddressBar(a AddressBar) Option {
	return func(e *Engine) { e.address = a }
}

// WithShareURL sets how a board identifier becomes a shareable address.
// Without it, Share returns the bare identifier.
func WithShareURL(f func(id string) string) Option {
	return func(e *Engine) { e.shareURL = f }
}

// WithExitConfirm sets the callback consulted by Close while unsaved edits
// are still being written. Returning true lets the close proceed.
func WithExitConfirm(f func() bool) Option {
	return func(e *Engine) { e.confirm = f }
}

// withClipboard swaps the clipboard writer. Test seam.
func withClipboard(f func(string) error) Option {
	return func(e *Engine) { e.clip = f }
}

// Engine owns the client's working copy of a board and keeps it mirrored
// to a remote store through debounced, serialized background saves.
//
// Concurrency model: a single goroutine (run) owns all mutable state.
// Public methods hand closures to that goroutine over a channel, so there
// is exactly one cooperative flow of control and at most one transport
// call in flight at any time.
type Engine struct {
	transport Transport
	address   AddressBar
	shareURL  func(id string) string
	confirm   func() bool
	clip      func(string) error
	debounce  time.Duration

	ctx      context.Context
	reqCh    chan func(*engineState)
	saveDone chan saveResult
	stopCh   chan struct{}
	stopped  chan struct{}
	closed   atomic.Bool
}

type engineState struct {
	notes     []board.Note
	remoteID  string
	status    SaveStatus
	dirty     bool
	lastSaved time.Time

	timer   *time.Timer
	timerCh <-chan time.Time

	// Single-slot concurrency guard. A save firing while a call is in
	// flight is remembered (depth 1, latest intent wins) and dispatched
	// when the call settles.
	inFlight bool
	pending  bool

	// Share calls waiting for a forced save to settle.
	waiters []chan shareOutcome
}

type shareOutcome struct {
	id  string
	err error
}

type saveKind int

const (
	saveCreate saveKind = iota
	saveReplace
	saveRemove
)

type saveResult struct {
	kind saveKind
	rec  *board.Board
	err  error
}

// NewEngine creates an engine talking through t. Start must be called
// before any other method.
func NewEngine(t Transport, opts ...Option) *Engine {
	e := &Engine{
		transport: t,
		clip:      clipboard.WriteAll,
		debounce:  DefaultDebounce,
		reqCh:     make(chan func(*engineState)),
		saveDone:  make(chan saveResult, 1),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewBlankNote returns a fresh empty note in the default color.
func NewBlankNote() board.Note {
	return board.Note{ID: uuid.NewString(), Color: board.DefaultColor}
}

// Start resolves the initial working copy and starts the engine loop.
//
// segment is the candidate identifier extracted from the visible address.
// A well-formed segment triggers a load: success adopts the remote notes,
// a missing board means "nothing here yet" and falls back to a fresh blank
// board, and a transport failure keeps the blank board but surfaces an
// error status. A malformed or empty segment skips the network entirely.
func (e *Engine) Start(ctx context.Context, segment string) {
	if ctx == nil {
		ctx = context.Background()
	}
	e.ctx = ctx

	st := &engineState{
		notes:  []board.Note{NewBlankNote()},
		status: StatusSaved,
	}

	if board.ValidID(segment) {
		rec, err := e.transport.FetchBoard(ctx, segment)
		switch {
		case err == nil:
			st.notes = rec.Notes
			st.remoteID = rec.ID
			if e.address != nil {
				e.address.SetBoard(rec.ID)
			}
		case errors.Is(err, apperr.ErrNotFound):
			// Nothing stored under that id; keep the fresh blank board.
		default:
			st.status = StatusError
		}
	}

	go e.run(st)
}

func (e *Engine) run(st *engineState) {
	defer close(e.stopped)
	for {
		select {
		case fn := <-e.reqCh:
			fn(st)
		case <-st.timerCh:
			st.timerCh = nil
			e.trySave(st)
		case res := <-e.saveDone:
			e.settleSave(st, res)
		case <-e.stopCh:
			if st.timer != nil {
				st.timer.Stop()
			}
			e.answerWaiters(st, "", ErrEngineStopped)
			return
		}
	}
}

// exec hands fn to the engine loop. Returns false if the engine has
// stopped.
func (e *Engine) exec(fn func(*engineState)) bool {
	select {
	case e.reqCh <- fn:
		return true
	case <-e.stopped:
		return false
	}
}

// markDirty records a local mutation: the working copy diverges from the
// remote, the visible status flips to saving, and the debounce timer is
// (re)armed. Only the state after a full quiet period is ever sent.
func (e *Engine) markDirty(st *engineState) {
	st.dirty = true
	st.status = StatusSaving
	e.armTimer(st, e.debounce)
}

func (e *Engine) armTimer(st *engineState, d time.Duration) {
	if st.timer == nil {
		st.timer = time.NewTimer(d)
	} else {
		if !st.timer.Stop() {
			select {
			case <-st.timer.C:
			default:
			}
		}
		st.timer.Reset(d)
	}
	st.timerCh = st.timer.C
}

func (e *Engine) disarmTimer(st *engineState) {
	if st.timer != nil {
		st.timer.Stop()
	}
	st.timerCh = nil
}

// trySave decides what the quiesced working copy means for the remote:
// first save of real content is a create, a known board with notes is a
// replace, a known board emptied out is a remove, and a board that has
// never held text is nothing at all.
func (e *Engine) trySave(st *engineState) {
	if st.inFlight {
		st.pending = true
		return
	}

	switch {
	case st.remoteID == "" && !board.HasContent(st.notes):
		// Never create empty boards; settle locally without a call.
		st.dirty = false
		st.status = StatusSaved
		e.answerWaiters(st, "", ErrNothingToShare)
	case st.remoteID == "":
		e.dispatch(st, saveCreate)
	case len(st.notes) == 0:
		e.dispatch(st, saveRemove)
	default:
		e.dispatch(st, saveReplace)
	}
}

func (e *Engine) dispatch(st *engineState, kind saveKind) {
	st.inFlight = true
	st.dirty = false

	notes := cloneNotes(st.notes)
	id := st.remoteID

	go func() {
		res := saveResult{kind: kind}
		switch kind {
		case saveCreate:
			res.rec, res.err = e.transport.CreateBoard(e.ctx, notes)
		case saveReplace:
			res.rec, res.err = e.transport.ReplaceBoard(e.ctx, id, notes)
		case saveRemove:
			_, res.err = e.transport.RemoveBoard(e.ctx, id)
		}
		e.saveDone <- res
	}()
}

func (e *Engine) settleSave(st *engineState, res saveResult) {
	st.inFlight = false

	if res.err != nil {
		// Local edits are untouched and there is no automatic retry: the
		// next mutation re-arms the debounce timer and tries again.
		st.dirty = true
		st.status = StatusError
		e.answerWaiters(st, "", res.err)
	} else {
		switch res.kind {
		case saveCreate:
			st.remoteID = res.rec.ID
			if e.address != nil {
				e.address.SetBoard(st.remoteID)
			}
		case saveRemove:
			st.notes = []board.Note{NewBlankNote()}
			st.remoteID = ""
			if e.address != nil {
				e.address.Clear()
			}
		}
		st.lastSaved = time.Now()
		if !st.dirty {
			st.status = StatusSaved
		}
		e.answerWaiters(st, st.remoteID, nil)
	}

	if st.pending {
		st.pending = false
		e.trySave(st)
	}
}

func (e *Engine) answerWaiters(st *engineState, id string, err error) {
	for _, w := range st.waiters {
		w <- shareOutcome{id: id, err: err}
	}
	st.waiters = nil
}

func cloneNotes(notes []board.Note) []board.Note {
	out := make([]board.Note, len(notes))
	copy(out, notes)
	return out
}

// Snapshot returns a copy of the current working copy and save state.
func (e *Engine) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	if !e.exec(func(st *engineState) {
		reply <- Snapshot{
			Notes:     cloneNotes(st.notes),
			RemoteID:  st.remoteID,
			Status:    st.status,
			Dirty:     st.dirty,
			LastSaved: st.lastSaved,
		}
	}) {
		return Snapshot{Status: StatusSaved}
	}
	return <-reply
}

// AddNote appends a fresh blank note, cascaded a little on the canvas, and
// returns it.
func (e *Engine) AddNote() (board.Note, error) {
	reply := make(chan board.Note, 1)
	if !e.exec(func(st *engineState) {
		n := NewBlankNote()
		offset := float64(len(st.notes)) * 24
		n.X, n.Y = offset, offset
		st.notes = append(st.notes, n)
		e.markDirty(st)
		reply <- n
	}) {
		return board.Note{}, ErrEngineStopped
	}
	return <-reply, nil
}

func (e *Engine) mutateNote(id string, mutate func(*board.Note)) error {
	reply := make(chan error, 1)
	if !e.exec(func(st *engineState) {
		for i := range st.notes {
			if st.notes[i].ID == id {
				mutate(&st.notes[i])
				e.markDirty(st)
				reply <- nil
				return
			}
		}
		reply <- ErrNoSuchNote
	}) {
		return ErrEngineStopped
	}
	return <-reply
}

// SetText replaces the text of the identified note.
func (e *Engine) SetText(id, text string) error {
	return e.mutateNote(id, func(n *board.Note) { n.Text = text })
}

// SetColor recolors the identified note.
func (e *Engine) SetColor(id, color string) error {
	return e.mutateNote(id, func(n *board.Note) { n.Color = color })
}

// MoveNote nudges the identified note on the canvas.
func (e *Engine) MoveNote(id string, dx, dy float64) error {
	return e.mutateNote(id, func(n *board.Note) {
		n.X += dx
		n.Y += dy
	})
}

// RemoveNote deletes the identified note from the working copy. Notes that
// still carry text cannot be removed; clear them first.
func (e *Engine) RemoveNote(id string) error {
	reply := make(chan error, 1)
	if !e.exec(func(st *engineState) {
		for i := range st.notes {
			if st.notes[i].ID != id {
				continue
			}
			if !st.notes[i].Blank() {
				reply <- ErrNoteNotBlank
				return
			}
			st.notes = append(st.notes[:i], st.notes[i+1:]...)
			e.markDirty(st)
			reply <- nil
			return
		}
		reply <- ErrNoSuchNote
	}) {
		return ErrEngineStopped
	}
	return <-reply
}

// Share composes a shareable address for the board. A board that has never
// been stored remotely is created first, bypassing the debounce timer. The
// address is copied to the system clipboard when possible; otherwise the
// caller should display it for manual copying.
func (e *Engine) Share(ctx context.Context) (ShareResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	outcome := make(chan shareOutcome, 1)
	if !e.exec(func(st *engineState) {
		if st.remoteID != "" {
			outcome <- shareOutcome{id: st.remoteID}
			return
		}
		if !board.HasContent(st.notes) && !st.inFlight {
			outcome <- shareOutcome{err: ErrNothingToShare}
			return
		}
		// Force the create attempt now instead of waiting out the timer.
		e.disarmTimer(st)
		st.waiters = append(st.waiters, outcome)
		e.trySave(st)
	}) {
		return ShareResult{}, ErrEngineStopped
	}

	select {
	case out := <-outcome:
		if out.err != nil {
			return ShareResult{}, out.err
		}
		addr := out.id
		if e.shareURL != nil {
			addr = e.shareURL(out.id)
		}
		res := ShareResult{Address: addr}
		if err := e.clip(addr); err == nil {
			res.Copied = true
		}
		return res, nil
	case <-ctx.Done():
		return ShareResult{}, ctx.Err()
	}
}

// Dirty reports whether unsaved local edits exist.
func (e *Engine) Dirty() bool {
	return e.Snapshot().Dirty
}

// Close stops the engine. While unsaved edits are still being written it
// first consults the exit-confirm callback; without confirmation it
// returns ErrUnsavedChanges and the engine keeps running. Use Shutdown
// once the warning has been confirmed elsewhere.
func (e *Engine) Close() error {
	reply := make(chan bool, 1)
	if !e.exec(func(st *engineState) {
		reply <- st.dirty && st.status == StatusSaving
	}) {
		return nil
	}
	if <-reply {
		if e.confirm == nil || !e.confirm() {
			return ErrUnsavedChanges
		}
	}
	e.Shutdown()
	return nil
}

// Shutdown stops the engine unconditionally. An in-flight transport call
// is not cancelled; it is simply no longer observed.
func (e *Engine) Shutdown() {
	if e.closed.CompareAndSwap(false, true) {
		close(e.stopCh)
	}
	<-e.stopped
}
