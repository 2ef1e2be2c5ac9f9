// Package connection describes a remote desktop target: host, port, the
// user-facing names and an optional password. Descriptors are built blank,
// cloned, or parsed from a "vnc://host:port" string or a .vnc key file.
package connection

import (
	"fmt"

	"github.com/yllada/vncviewer/common"
)

// IconName is the themed icon shown next to every connection.
const IconName = "application-x-vnc"

// Type is the remote desktop protocol of a connection.
type Type int

const (
	// TypeVNC is the RFB/VNC protocol.
	TypeVNC Type = iota
)

// String returns the URI scheme of the protocol.
func (t Type) String() string {
	switch t {
	case TypeVNC:
		return common.DefaultScheme
	default:
		return "unknown"
	}
}

// Connection is an in-memory record of a remote target plus UI metadata.
type Connection struct {
	// Host is the remote host name or address.
	Host string
	// Port is the remote port. Zero until set.
	Port int
	// Name is the bookmark label, empty when the target is not bookmarked.
	Name string
	// Password is never written to the bookmark file.
	Password string
	// DesktopName is the name announced by the remote desktop.
	DesktopName string
	// Type is the protocol.
	Type Type
}

// New returns a blank VNC connection with port 0.
func New() *Connection {
	return &Connection{Type: TypeVNC}
}

// SetHost replaces the host.
func (c *Connection) SetHost(host string) { c.Host = host }

// SetPort replaces the port.
func (c *Connection) SetPort(port int) { c.Port = port }

// SetPassword replaces the password.
func (c *Connection) SetPassword(password string) { c.Password = password }

// SetName replaces the bookmark name.
func (c *Connection) SetName(name string) { c.Name = name }

// SetDesktopName replaces the desktop name.
func (c *Connection) SetDesktopName(desktopName string) { c.DesktopName = desktopName }

// Clone returns an independent copy of c.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// BestName returns the name to show for the connection: the bookmark name,
// else the desktop name, else "host:port". It returns "" when nothing is set.
func (c *Connection) BestName() string {
	if c == nil {
		return ""
	}
	if c.Name != "" {
		return c.Name
	}
	if c.DesktopName != "" {
		return c.DesktopName
	}
	if c.Host != "" {
		return fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	return ""
}

// Icon returns the themed icon name for the connection.
func (c *Connection) Icon() string {
	return IconName
}

// Address returns "host:port".
func (c *Connection) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// String returns the connection as a URI, e.g. "vnc://host:5900".
func (c *Connection) String() string {
	return fmt.Sprintf("%s://%s:%d", c.Type, c.Host, c.Port)
}
