package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/connection"
)

func newStore(t *testing.T, entries ...[3]string) *bookmarks.Store {
	t.Helper()
	store, err := bookmarks.Open(filepath.Join(t.TempDir(), "bookmarks"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	for _, e := range entries {
		conn, err := connection.ParseURI(e[1]+":"+e[2], nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Add(conn, e[0]); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func names(store *bookmarks.Store) []string {
	var out []string
	for conn := range store.All() {
		out = append(out, conn.Name)
	}
	return out
}

func TestAddBookmark(t *testing.T) {
	store := newStore(t)
	m := New(store)

	m, _ = press(t, m, "a")
	if m.State() != bookmarks.StateDialogShown {
		t.Fatalf("State() = %v, want DialogShown", m.State())
	}

	// Host has focus first, then the port field after tab, then name.
	m, _ = press(t, m, "lab.lan", "tab", "ctrl+u", "5902", "tab", "Lab", "enter")

	if m.State() != bookmarks.StateIdle || m.LastOutcome() != bookmarks.StateConfirmed {
		t.Errorf("State() = %v, LastOutcome() = %v", m.State(), m.LastOutcome())
	}
	got, err := store.Get("Lab")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Host != "lab.lan" || got.Port != 5902 {
		t.Errorf("stored %s:%d", got.Host, got.Port)
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list has %d items, want 1", len(m.list.Items()))
	}
}

func TestAddBookmark_NameFallsBackToHost(t *testing.T) {
	store := newStore(t)
	m := New(store)

	m, _ = press(t, m, "a", "lab.lan", "enter")

	if !store.Has("lab.lan") {
		t.Errorf("bookmarks = %v, want lab.lan", names(store))
	}
	if c, _ := store.Get("lab.lan"); c == nil || c.Port != 5900 {
		t.Errorf("stored %+v, want default port", c)
	}
}

func TestAddBookmark_Validation(t *testing.T) {
	store := newStore(t)
	m := New(store)

	m, _ = press(t, m, "a", "enter")
	if m.mode != modeAdd || m.err == nil {
		t.Error("empty host should keep the form open with an error")
	}

	m, _ = press(t, m, "h", "tab", "ctrl+u", "99999", "enter")
	if m.mode != modeAdd || m.err == nil {
		t.Error("out of range port should keep the form open with an error")
	}
	if store.Len() != 0 {
		t.Error("nothing should be stored")
	}
}

func TestAddBookmark_Cancel(t *testing.T) {
	store := newStore(t)
	m := New(store)

	m, _ = press(t, m, "a", "lab.lan", "esc")

	if m.State() != bookmarks.StateIdle || m.LastOutcome() != bookmarks.StateCancelled {
		t.Errorf("State() = %v, LastOutcome() = %v", m.State(), m.LastOutcome())
	}
	if store.Len() != 0 {
		t.Error("cancelled add must not store anything")
	}
}

func TestEditBookmark(t *testing.T) {
	store := newStore(t, [3]string{"Office", "office.lan", "5901"})
	m := New(store)

	m, _ = press(t, m, "e")
	if m.mode != modeEdit {
		t.Fatal("e should open the edit form")
	}
	if m.inputs[fieldName].Value() != "Office" || m.inputs[fieldHost].Value() != "office.lan" || m.inputs[fieldPort].Value() != "5901" {
		t.Errorf("form not pre-filled: %q %q %q",
			m.inputs[fieldName].Value(), m.inputs[fieldHost].Value(), m.inputs[fieldPort].Value())
	}

	m, _ = press(t, m, "ctrl+u", "Work", "enter")

	if store.Has("Office") || !store.Has("Work") {
		t.Errorf("bookmarks = %v, want [Work]", names(store))
	}
	if m.LastOutcome() != bookmarks.StateConfirmed {
		t.Errorf("LastOutcome() = %v", m.LastOutcome())
	}
}

func TestDeleteBookmark(t *testing.T) {
	store := newStore(t, [3]string{"Office", "office.lan", "5901"}, [3]string{"Lab", "lab", "5900"})
	m := New(store)

	m, _ = press(t, m, "d")
	if m.mode != modeConfirmDelete || m.State() != bookmarks.StateDialogShown {
		t.Fatal("d should ask for confirmation")
	}
	if !strings.Contains(m.View(), "Office") {
		t.Error("confirmation should name the bookmark")
	}

	m, _ = press(t, m, "n")
	if store.Len() != 2 || m.LastOutcome() != bookmarks.StateCancelled {
		t.Error("n must keep the bookmark")
	}

	m, _ = press(t, m, "d", "y")
	if store.Has("Office") || store.Len() != 1 {
		t.Errorf("bookmarks = %v, want [Lab]", names(store))
	}
	if m.State() != bookmarks.StateIdle || m.LastOutcome() != bookmarks.StateConfirmed {
		t.Errorf("State() = %v, LastOutcome() = %v", m.State(), m.LastOutcome())
	}
}

func TestSelectAndQuit(t *testing.T) {
	store := newStore(t, [3]string{"Office", "office.lan", "5901"})
	m := New(store)

	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	if sel := m.Selected(); sel == nil || sel.Name != "Office" || sel.Port != 5901 {
		t.Errorf("Selected() = %+v", sel)
	}
}

func TestQuit(t *testing.T) {
	m := New(newStore(t))

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
	if m.Selected() != nil {
		t.Error("nothing should be selected")
	}
}

func TestEmptyListKeys(t *testing.T) {
	m := New(newStore(t))

	m, _ = press(t, m, "e", "d", "enter")
	if m.mode != modeBrowse || m.Selected() != nil {
		t.Error("edit, delete and enter should do nothing on an empty list")
	}
}

func TestView(t *testing.T) {
	store := newStore(t, [3]string{"Office", "office.lan", "5901"})
	next, _ := New(store).Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m := next.(Model)

	view := m.View()
	for _, want := range []string{"VNC Bookmarks", "Office", "office.lan:5901"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m, _ = press(t, m, "a")
	if !strings.Contains(m.View(), "Add Bookmark") {
		t.Error("form view should have a title")
	}
}
