package bookmarks

import (
	"context"
	"errors"
	"sync"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

// DialogState tracks a dialog-backed operation.
type DialogState int

const (
	// StateIdle means no dialog is open.
	StateIdle DialogState = iota
	// StateDialogShown means the prompter is waiting for the user.
	StateDialogShown
	// StateConfirmed means the user accepted the dialog.
	StateConfirmed
	// StateCancelled means the user dismissed the dialog.
	StateCancelled
)

// String returns a human-readable state name.
func (s DialogState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDialogShown:
		return "DialogShown"
	case StateConfirmed:
		return "Confirmed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// EditRequest holds the values entered in an edit dialog.
type EditRequest struct {
	Name string
	Host string
	Port int
}

// Prompter asks the user for bookmark details. Each method blocks until the
// user confirms (ok true) or cancels (ok false).
type Prompter interface {
	// PromptAdd asks for the name to store conn under.
	PromptAdd(ctx context.Context, conn *connection.Connection) (name string, ok bool, err error)
	// PromptEdit asks for new values, pre-filled from conn.
	PromptEdit(ctx context.Context, conn *connection.Connection) (req EditRequest, ok bool, err error)
	// ConfirmDelete asks whether the bookmark called name should be removed.
	ConfirmDelete(ctx context.Context, name string) (ok bool, err error)
}

// Manager runs add, edit and delete through a Prompter and applies confirmed
// results to a Store. Save failures are logged, not returned.
type Manager struct {
	store    *Store
	prompter Prompter

	mu    sync.Mutex
	state DialogState

	// OnStateChange, when set, is called after every state transition.
	OnStateChange func(DialogState)
}

// NewManager creates a Manager for store using prompter.
func NewManager(store *Store, prompter Prompter) *Manager {
	return &Manager{
		store:    store,
		prompter: prompter,
		state:    StateIdle,
	}
}

// Store returns the underlying bookmark store.
func (m *Manager) Store() *Store {
	return m.store
}

// State returns the current dialog state.
func (m *Manager) State() DialogState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(state DialogState) {
	m.mu.Lock()
	m.state = state
	hook := m.OnStateChange
	m.mu.Unlock()

	if hook != nil {
		hook(state)
	}
}

// settle records the prompt outcome and reports whether the user confirmed.
// Anything but a confirmation ends back in Idle.
func (m *Manager) settle(ok bool, err error) bool {
	if err == nil {
		if ok {
			m.setState(StateConfirmed)
			return true
		}
		m.setState(StateCancelled)
	}
	m.setState(StateIdle)
	return false
}

// AddBookmark prompts for a name and stores conn under it. It reports whether
// the user confirmed.
func (m *Manager) AddBookmark(ctx context.Context, conn *connection.Connection) (bool, error) {
	if conn == nil {
		return false, common.ErrInvalidBookmark
	}
	m.setState(StateDialogShown)
	name, ok, err := m.prompter.PromptAdd(ctx, conn)
	if !m.settle(ok, err) {
		return false, err
	}
	defer m.setState(StateIdle)

	if err := m.store.Add(conn, name); err != nil {
		logStoreError("adding", conn.BestName(), err)
	}
	return true, nil
}

// EditBookmark prompts with the current values of conn and applies the
// result. It reports whether the user confirmed.
func (m *Manager) EditBookmark(ctx context.Context, conn *connection.Connection) (bool, error) {
	if conn == nil {
		return false, common.ErrInvalidBookmark
	}
	m.setState(StateDialogShown)
	req, ok, err := m.prompter.PromptEdit(ctx, conn)
	if !m.settle(ok, err) {
		return false, err
	}
	defer m.setState(StateIdle)

	if err := m.store.Edit(conn, req.Name, req.Host, req.Port); err != nil {
		logStoreError("editing", conn.BestName(), err)
	}
	return true, nil
}

// DeleteBookmark asks for confirmation and removes the bookmark named after
// conn's best name. It returns false without prompting when no such bookmark
// exists, and false when the removal fails.
func (m *Manager) DeleteBookmark(ctx context.Context, conn *connection.Connection) (bool, error) {
	if conn == nil {
		return false, nil
	}
	name := conn.BestName()
	if !m.store.Has(name) {
		return false, nil
	}

	m.setState(StateDialogShown)
	ok, err := m.prompter.ConfirmDelete(ctx, name)
	if !m.settle(ok, err) {
		return false, err
	}
	defer m.setState(StateIdle)

	if err := m.store.Remove(name); err != nil {
		if errors.Is(err, common.ErrSave) {
			common.LogWarn("Error while saving bookmarks: %v", err)
			return true, nil
		}
		common.LogWarn("Error while removing %s from bookmarks: %v", name, err)
		return false, nil
	}
	return true, nil
}

func logStoreError(action, name string, err error) {
	if errors.Is(err, common.ErrSave) {
		common.LogWarn("Error while saving bookmarks: %v", err)
		return
	}
	common.LogWarn("Error while %s bookmark %s: %v", action, name, err)
}
