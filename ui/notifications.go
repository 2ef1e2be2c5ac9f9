// Package ui provides the graphical user interface for VNC Viewer.
// This file contains the notification system for viewer session events.
package ui

import (
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

const (
	notificationsDest      = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsNotify    = notificationsDest + ".Notify"
	notificationTimeoutMS  = 5000
	notificationUrgencyKey = "urgency"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// urgency maps the type to the freedesktop urgency level.
func (t NotificationType) urgency() byte {
	switch t {
	case NotificationError:
		return 2
	case NotificationWarning:
		return 1
	default:
		return 0
	}
}

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

// Notifier sends notifications over the session bus. It implements
// common.Notifier.
type Notifier struct {
	enabled func() bool

	mu   sync.Mutex
	conn *dbus.Conn
}

var _ common.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier. enabled is consulted before every
// notification; nil means always enabled.
func NewNotifier(enabled func() bool) *Notifier {
	return &Notifier{enabled: enabled}
}

func (n *Notifier) bus() (*dbus.Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil && n.conn.Connected() {
		return n.conn, nil
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	n.conn = conn
	return conn, nil
}

// Show sends n over the session bus. Failures are logged.
func (n *Notifier) Show(note Notification) {
	if n.enabled != nil && !n.enabled() {
		return
	}

	icon := note.Icon
	if icon == "" {
		switch note.Type {
		case NotificationWarning:
			icon = "dialog-warning"
		case NotificationError:
			icon = "dialog-error"
		default:
			icon = connection.IconName
		}
	}

	conn, err := n.bus()
	if err != nil {
		common.LogWarn("Error showing notification: %v", err)
		return
	}

	hints := map[string]dbus.Variant{
		notificationUrgencyKey: dbus.MakeVariant(note.Type.urgency()),
	}
	call := conn.Object(notificationsDest, notificationsPath).Call(
		notificationsNotify, 0,
		common.AppName, uint32(0), icon, note.Title, note.Message,
		[]string{}, hints, int32(notificationTimeoutMS),
	)
	if call.Err != nil {
		common.LogWarn("Error showing notification: %v", call.Err)
	}
}

// Notify implements common.Notifier.
func (n *Notifier) Notify(title, message string) error {
	n.Show(Notification{Title: title, Message: message})
	return nil
}

// NotifyWithIcon implements common.Notifier.
func (n *Notifier) NotifyWithIcon(title, message, icon string) error {
	n.Show(Notification{Title: title, Message: message, Icon: icon})
	return nil
}

// NotifyStarted shows a notification when a viewer starts
func (n *Notifier) NotifyStarted(name string) {
	n.Show(Notification{
		Title:   "Viewer Started",
		Message: "Connected to " + name,
		Type:    NotificationSuccess,
	})
}

// NotifyExited shows a notification when a viewer closes
func (n *Notifier) NotifyExited(name string) {
	n.Show(Notification{
		Title:   "Viewer Closed",
		Message: "Disconnected from " + name,
		Type:    NotificationInfo,
	})
}

// NotifyError shows a notification for viewer errors
func (n *Notifier) NotifyError(name, errorMsg string) {
	n.Show(Notification{
		Title:   "Connection Error",
		Message: name + ": " + errorMsg,
		Type:    NotificationError,
	})
}
