// Package tui is a terminal bookmark browser built on bubbletea.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Host", "Port"}

type bookmarkItem struct {
	conn *connection.Connection
}

func (i bookmarkItem) Title() string       { return i.conn.BestName() }
func (i bookmarkItem) Description() string { return i.conn.Address() }
func (i bookmarkItem) FilterValue() string { return i.conn.Name + " " + i.conn.Host }

// Model is the bubbletea model of the browser.
type Model struct {
	store *bookmarks.Store

	list    list.Model
	mode    mode
	state   bookmarks.DialogState
	outcome bookmarks.DialogState
	inputs  []textinput.Model
	focus   int

	// target is the bookmark being edited or deleted.
	target *connection.Connection

	status   string
	err      error
	selected *connection.Connection
}

// New creates the browser over store.
func New(store *bookmarks.Store) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "VNC Bookmarks"
	l.Styles.Title = titleStyle
	l.DisableQuitKeybindings()

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 255
		inputs[i] = in
	}
	inputs[fieldName].Placeholder = "defaults to host"
	inputs[fieldHost].Placeholder = "hostname or address"
	inputs[fieldPort].Placeholder = strconv.Itoa(common.DefaultPort)
	inputs[fieldPort].CharLimit = 5

	m := Model{
		store:  store,
		list:   l,
		inputs: inputs,
		state:  bookmarks.StateIdle,
	}
	m.refresh()
	return m
}

// Run shows the browser and returns the bookmark chosen with enter, or nil.
func Run(store *bookmarks.Store) (*connection.Connection, error) {
	final, err := tea.NewProgram(New(store), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Selected(), nil
}

// Selected returns the bookmark chosen with enter.
func (m Model) Selected() *connection.Connection {
	return m.selected
}

// State returns the state of the current dialog.
func (m Model) State() bookmarks.DialogState {
	return m.state
}

// LastOutcome returns how the most recent dialog ended: Confirmed or
// Cancelled, or Idle before any dialog.
func (m Model) LastOutcome() bookmarks.DialogState {
	return m.outcome
}

// Status returns the last status line.
func (m Model) Status() string {
	return m.status
}

func (m *Model) refresh() {
	items := make([]list.Item, 0, m.store.Len())
	for conn := range m.store.All() {
		items = append(items, bookmarkItem{conn: conn})
	}
	m.list.SetItems(items)
}

func (m Model) current() *connection.Connection {
	item, ok := m.list.SelectedItem().(bookmarkItem)
	if !ok {
		return nil
	}
	return item.conn
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.updateBrowse(msg); handled {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "enter":
		if conn := m.current(); conn != nil {
			m.selected = conn
			return m, tea.Quit, true
		}
		return m, nil, true
	case "a":
		m.target = nil
		m.openForm(modeAdd, "", "", common.DefaultPort)
		return m, textinput.Blink, true
	case "e":
		conn := m.current()
		if conn == nil {
			return m, nil, true
		}
		m.target = conn
		m.openForm(modeEdit, conn.Name, conn.Host, conn.Port)
		return m, textinput.Blink, true
	case "d":
		conn := m.current()
		if conn == nil || !m.store.Has(conn.BestName()) {
			return m, nil, true
		}
		m.target = conn
		m.mode = modeConfirmDelete
		m.state = bookmarks.StateDialogShown
		return m, nil, true
	}
	return m, nil, false
}

func (m *Model) openForm(mode mode, name, host string, port int) {
	m.mode = mode
	m.state = bookmarks.StateDialogShown
	m.err = nil
	m.inputs[fieldName].SetValue(name)
	m.inputs[fieldHost].SetValue(host)
	m.inputs[fieldPort].SetValue(strconv.Itoa(port))
	for i := range m.inputs {
		m.inputs[i].CursorEnd()
	}
	field := fieldName
	if mode == modeAdd {
		field = fieldHost
	}
	m.setFocus(field)
}

func (m *Model) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// finish records how the dialog ended and returns to Idle.
func (m *Model) finish(outcome bookmarks.DialogState) {
	m.outcome = outcome
	m.mode = modeBrowse
	m.target = nil
	m.err = nil
	m.state = bookmarks.StateIdle
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.finish(bookmarks.StateCancelled)
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) formValues() (name, host string, port int, err error) {
	name = strings.TrimSpace(m.inputs[fieldName].Value())
	host = strings.TrimSpace(m.inputs[fieldHost].Value())
	if host == "" {
		return "", "", 0, errors.New("host is required")
	}

	portText := strings.TrimSpace(m.inputs[fieldPort].Value())
	if portText == "" {
		return name, host, common.DefaultPort, nil
	}
	port, err = strconv.Atoi(portText)
	if err != nil || port < 0 || port > common.MaxPort {
		return "", "", 0, fmt.Errorf("port must be a number between 0 and %d", common.MaxPort)
	}
	return name, host, port, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	name, host, port, err := m.formValues()
	if err != nil {
		m.err = err
		return m, nil
	}

	if m.mode == modeAdd {
		conn := connection.New()
		conn.SetHost(host)
		conn.SetPort(port)
		err = m.store.Add(conn, name)
		m.status = fmt.Sprintf("Added %s", conn.BestName())
	} else {
		err = m.store.Edit(m.target, name, host, port)
		m.status = fmt.Sprintf("Updated %s", m.target.BestName())
	}
	if err != nil {
		common.LogWarn("Error while saving bookmarks: %v", err)
		m.status = fmt.Sprintf("Error while saving bookmarks: %v", err)
	}

	m.finish(bookmarks.StateConfirmed)
	m.refresh()
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		name := m.target.BestName()
		if err := m.store.Remove(name); err != nil {
			common.LogWarn("Error while removing %s from bookmarks: %v", name, err)
			m.status = fmt.Sprintf("Error while removing %s: %v", name, err)
		} else {
			m.status = fmt.Sprintf("Removed %s", name)
		}
		m.finish(bookmarks.StateConfirmed)
		m.refresh()
	case "n", "N", "esc":
		m.finish(bookmarks.StateCancelled)
		m.status = "Cancelled"
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.mode {
	case modeAdd, modeEdit:
		return m.formView()
	case modeConfirmDelete:
		body := fmt.Sprintf("Are you sure you want to exclude %s from bookmarks?\n\n%s",
			lipgloss.NewStyle().Italic(true).Render(m.target.BestName()),
			helpStyle.Render("y: delete • n/esc: cancel"))
		return dialogStyle.Render(body)
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("  ")
	}
	b.WriteString(helpStyle.Render("enter: connect • a: add • e: edit • d: delete • q: quit"))
	return b.String()
}

func (m Model) formView() string {
	title := "Add Bookmark"
	if m.mode == modeEdit {
		title = "Edit Bookmark"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i, label := range fieldLabels {
		style := labelStyle
		if i == m.focus {
			style = focusedLabelStyle
		}
		b.WriteString(style.Render(label))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	return dialogStyle.Render(b.String())
}
