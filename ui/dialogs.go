// Package ui provides the graphical user interface for VNC Viewer.
// This file contains the bookmark dialogs.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

// dialogPrompter implements bookmarks.Prompter with modal GTK dialogs. Its
// methods block and must not be called from the GTK main thread.
type dialogPrompter struct {
	parent func() *gtk.Window
}

var _ bookmarks.Prompter = (*dialogPrompter)(nil)

// ask shows a dialog on the main thread and waits for its reply.
func ask[T any](ctx context.Context, show func(reply func(T, bool))) (T, bool, error) {
	type answer struct {
		value T
		ok    bool
	}
	ch := make(chan answer, 1)

	glib.IdleAdd(func() {
		replied := false
		show(func(value T, ok bool) {
			if replied {
				return
			}
			replied = true
			ch <- answer{value, ok}
		})
	})

	select {
	case a := <-ch:
		return a.value, a.ok, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

func (p *dialogPrompter) PromptAdd(ctx context.Context, conn *connection.Connection) (string, bool, error) {
	return ask(ctx, func(reply func(string, bool)) {
		p.showAddDialog(conn, reply)
	})
}

func (p *dialogPrompter) PromptEdit(ctx context.Context, conn *connection.Connection) (bookmarks.EditRequest, bool, error) {
	return ask(ctx, func(reply func(bookmarks.EditRequest, bool)) {
		p.showEditDialog(conn, reply)
	})
}

func (p *dialogPrompter) ConfirmDelete(ctx context.Context, name string) (bool, error) {
	ok, _, err := ask(ctx, func(reply func(bool, bool)) {
		p.showDeleteDialog(name, func(confirmed bool) { reply(confirmed, true) })
	})
	return ok, err
}

// newDialogWindow creates a modal window with a content box and a button bar.
func newDialogWindow(parent *gtk.Window, title string, width, height int) (*gtk.Window, *gtk.Box, *gtk.Box) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	if parent != nil {
		window.SetTransientFor(parent)
	}
	window.SetModal(true)
	window.SetDefaultSize(width, height)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 0)

	contentBox := gtk.NewBox(gtk.OrientationVertical, 8)
	contentBox.SetMarginTop(24)
	contentBox.SetMarginBottom(12)
	contentBox.SetMarginStart(24)
	contentBox.SetMarginEnd(24)
	mainBox.Append(contentBox)

	buttonBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBox.SetHAlign(gtk.AlignEnd)
	buttonBox.SetMarginTop(12)
	buttonBox.SetMarginBottom(24)
	buttonBox.SetMarginStart(24)
	buttonBox.SetMarginEnd(24)
	mainBox.Append(buttonBox)

	window.SetChild(mainBox)
	return window, contentBox, buttonBox
}

func fieldLabel(text string) *gtk.Label {
	label := gtk.NewLabel(text)
	label.SetXAlign(0)
	label.AddCSSClass("dim-label")
	return label
}

// showAddDialog asks for the name of a new bookmark. An empty name stores
// the bookmark under its host.
func (p *dialogPrompter) showAddDialog(conn *connection.Connection, reply func(string, bool)) {
	window, contentBox, buttonBox := newDialogWindow(p.parent(), "Add Bookmark", 400, 200)

	header := gtk.NewLabel(conn.Address())
	header.AddCSSClass("title-3")
	header.SetXAlign(0)
	contentBox.Append(header)

	contentBox.Append(fieldLabel("Enter a name for this bookmark"))
	entry := gtk.NewEntry()
	entry.SetPlaceholderText(conn.Host)
	contentBox.Append(entry)

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(func() {
		window.Close()
	})
	buttonBox.Append(cancelBtn)

	addBtn := gtk.NewButtonWithLabel("Add")
	addBtn.AddCSSClass("suggested-action")
	addBtn.ConnectClicked(func() {
		reply(strings.TrimSpace(entry.Text()), true)
		window.Close()
	})
	buttonBox.Append(addBtn)

	entry.ConnectActivate(func() {
		addBtn.Activate()
	})
	window.ConnectCloseRequest(func() bool {
		reply("", false)
		return false
	})

	window.Show()
	entry.GrabFocus()
}

// showEditDialog asks for new values, pre-filled from conn.
func (p *dialogPrompter) showEditDialog(conn *connection.Connection, reply func(bookmarks.EditRequest, bool)) {
	window, contentBox, buttonBox := newDialogWindow(p.parent(), "Edit Bookmark", 400, 320)

	contentBox.Append(fieldLabel("Name"))
	nameEntry := gtk.NewEntry()
	nameEntry.SetText(conn.Name)
	nameEntry.SetPlaceholderText("Uses the host when empty")
	contentBox.Append(nameEntry)

	hostLabel := fieldLabel("Host")
	hostLabel.SetMarginTop(12)
	contentBox.Append(hostLabel)
	hostEntry := gtk.NewEntry()
	hostEntry.SetText(conn.Host)
	contentBox.Append(hostEntry)

	portLabel := fieldLabel("Port")
	portLabel.SetMarginTop(12)
	contentBox.Append(portLabel)
	portSpin := gtk.NewSpinButtonWithRange(0, common.MaxPort, 1)
	portSpin.SetValue(float64(conn.Port))
	portSpin.SetNumeric(true)
	contentBox.Append(portSpin)

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(func() {
		window.Close()
	})
	buttonBox.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel("Save")
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.SetSensitive(conn.Host != "")
	saveBtn.ConnectClicked(func() {
		reply(bookmarks.EditRequest{
			Name: strings.TrimSpace(nameEntry.Text()),
			Host: strings.TrimSpace(hostEntry.Text()),
			Port: portSpin.ValueAsInt(),
		}, true)
		window.Close()
	})
	buttonBox.Append(saveBtn)

	// Host is required.
	hostEntry.ConnectChanged(func() {
		saveBtn.SetSensitive(strings.TrimSpace(hostEntry.Text()) != "")
	})
	nameEntry.ConnectActivate(func() {
		saveBtn.Activate()
	})
	hostEntry.ConnectActivate(func() {
		saveBtn.Activate()
	})
	window.ConnectCloseRequest(func() bool {
		reply(bookmarks.EditRequest{}, false)
		return false
	})

	window.Show()
	nameEntry.GrabFocus()
}

// showDeleteDialog asks whether name should be removed.
func (p *dialogPrompter) showDeleteDialog(name string, reply func(bool)) {
	dialog := adw.NewMessageDialog(
		p.parent(),
		"Delete Bookmark?",
		fmt.Sprintf("Are you sure you want to exclude %s from bookmarks?", name),
	)
	dialog.AddResponse("cancel", "_Cancel")
	dialog.AddResponse("delete", "_Delete")
	dialog.SetResponseAppearance("delete", adw.ResponseDestructive)
	dialog.SetDefaultResponse("cancel")
	dialog.SetCloseResponse("cancel")
	dialog.ConnectResponse(func(response string) {
		reply(response == "delete")
	})
	dialog.Present()
}

// showPasswordDialog asks for the password of conn. The reply carries the
// password and whether it should be remembered.
func showPasswordDialog(parent *gtk.Window, conn *connection.Connection, remember bool, reply func(password string, save, ok bool)) {
	window, contentBox, buttonBox := newDialogWindow(parent, "VNC Password", 400, 240)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	headerIcon := gtk.NewImage()
	headerIcon.SetFromIconName("dialog-password-symbolic")
	headerIcon.SetPixelSize(28)
	headerBox.Append(headerIcon)

	title := gtk.NewLabel(conn.BestName())
	title.AddCSSClass("title-2")
	headerBox.Append(title)
	contentBox.Append(headerBox)

	passwordLabel := fieldLabel("Password")
	passwordLabel.SetMarginTop(12)
	contentBox.Append(passwordLabel)

	passwordEntry := gtk.NewPasswordEntry()
	passwordEntry.SetShowPeekIcon(true)
	contentBox.Append(passwordEntry)

	saveCheck := gtk.NewCheckButton()
	saveCheck.SetLabel("Remember password")
	saveCheck.SetActive(remember)
	saveCheck.SetMarginTop(8)
	contentBox.Append(saveCheck)

	replied := false
	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(func() {
		window.Close()
	})
	buttonBox.Append(cancelBtn)

	connectBtn := gtk.NewButtonWithLabel("Connect")
	connectBtn.AddCSSClass("suggested-action")
	connectBtn.ConnectClicked(func() {
		replied = true
		window.Close()
		reply(passwordEntry.Text(), saveCheck.Active(), true)
	})
	buttonBox.Append(connectBtn)

	passwordEntry.ConnectActivate(func() {
		connectBtn.Activate()
	})
	window.ConnectCloseRequest(func() bool {
		if !replied {
			replied = true
			reply("", false, false)
		}
		return false
	})

	window.Show()
	passwordEntry.GrabFocus()
}
