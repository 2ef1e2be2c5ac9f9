package launcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

// Status represents the state of a viewer session.
type Status int

const (
	// StatusStarting means the process is being started.
	StatusStarting Status = iota
	// StatusRunning means the viewer process is alive.
	StatusRunning
	// StatusExited means the viewer exited normally or was closed by us.
	StatusExited
	// StatusError means the viewer failed to start or exited with an error.
	StatusError
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "Starting..."
	case StatusRunning:
		return "Running"
	case StatusExited:
		return "Exited"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Session is one viewer process.
type Session struct {
	// Conn is the target of the viewer.
	Conn *connection.Connection
	// StartTime is when the viewer was launched.
	StartTime time.Time

	mu        sync.RWMutex
	status    Status
	lastError string
	cmd       *exec.Cmd
	stopped   bool
	done      chan struct{}
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastError returns the error message of a failed session.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Done is closed when the viewer process has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) active() bool {
	st := s.Status()
	return st == StatusStarting || st == StatusRunning
}

// Manager launches viewers and tracks them by "host:port".
type Manager struct {
	template string

	mu         sync.RWMutex
	sessions   map[string]*Session
	onStatus   func(*Session)
	logHandler func(*Session, string)
}

// NewManager creates a Manager that starts viewers from template.
func NewManager(template string) *Manager {
	return &Manager{
		template: template,
		sessions: make(map[string]*Session),
	}
}

// SetTemplate replaces the viewer command template for later launches.
func (m *Manager) SetTemplate(template string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.template = template
}

// SetStatusHandler registers a callback run after every status change.
func (m *Manager) SetStatusHandler(handler func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = handler
}

// SetLogHandler registers a callback receiving the viewer's output lines.
func (m *Manager) SetLogHandler(handler func(*Session, string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logHandler = handler
}

// Connect starts a viewer for conn. It fails with common.ErrAlreadyRunning
// while a viewer for the same host and port is alive.
func (m *Manager) Connect(ctx context.Context, conn *connection.Connection, password string) (*Session, error) {
	session, stdout, stderr, err := m.start(ctx, conn, password)
	if err != nil {
		return session, err
	}

	m.setStatus(session, StatusRunning, "")

	var output sync.WaitGroup
	output.Add(2)
	go m.monitorOutput(session, stdout, &output)
	go m.monitorOutput(session, stderr, &output)
	go m.wait(session, &output)

	return session, nil
}

func (m *Manager) start(ctx context.Context, conn *connection.Connection, password string) (*Session, io.Reader, io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := conn.Address()
	if existing, ok := m.sessions[key]; ok && existing.active() {
		return existing, nil, nil, common.ErrAlreadyRunning
	}

	// The viewer outlives the request that started it.
	cmd, err := Command(context.WithoutCancel(ctx), m.template, conn, password)
	if err != nil {
		return nil, nil, nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, err
	}

	common.LogInfo("Launching viewer for %s", conn)
	if err := cmd.Start(); err != nil {
		common.LogError("Could not start viewer: %v", err)
		return nil, nil, nil, fmt.Errorf("failed to start viewer: %w", err)
	}
	common.LogDebug("Viewer started with PID %d", cmd.Process.Pid)

	session := &Session{
		Conn:      conn.Clone(),
		StartTime: time.Now(),
		status:    StatusStarting,
		cmd:       cmd,
		done:      make(chan struct{}),
	}
	m.sessions[key] = session
	return session, stdout, stderr, nil
}

func (m *Manager) wait(session *Session, output *sync.WaitGroup) {
	output.Wait()
	err := session.cmd.Wait()

	session.mu.RLock()
	stopped := session.stopped
	session.mu.RUnlock()

	switch {
	case err != nil && !stopped:
		common.LogWarn("Viewer for %s exited with error: %v", session.Conn, err)
		m.setStatus(session, StatusError, err.Error())
	default:
		common.LogInfo("Viewer for %s exited", session.Conn)
		m.setStatus(session, StatusExited, "")
	}
	close(session.done)
}

func (m *Manager) monitorOutput(session *Session, r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		common.LogDebug("viewer %s: %s", session.Conn.Address(), line)

		m.mu.RLock()
		handler := m.logHandler
		m.mu.RUnlock()
		if handler != nil {
			handler(session, line)
		}
	}
}

func (m *Manager) setStatus(session *Session, status Status, lastError string) {
	m.mu.RLock()
	handler := m.onStatus
	m.mu.RUnlock()

	session.mu.Lock()
	session.status = status
	session.lastError = lastError
	session.mu.Unlock()

	if handler != nil {
		handler(session)
	}
}

// Disconnect terminates the viewer for address ("host:port").
func (m *Manager) Disconnect(address string) error {
	m.mu.RLock()
	session, ok := m.sessions[address]
	m.mu.RUnlock()

	if !ok || !session.active() {
		return common.ErrNotRunning
	}

	session.mu.Lock()
	session.stopped = true
	session.mu.Unlock()

	if session.cmd.Process != nil {
		_ = session.cmd.Process.Kill()
	}
	return nil
}

// DisconnectAll terminates every running viewer.
func (m *Manager) DisconnectAll() {
	for _, session := range m.Sessions() {
		if session.active() {
			_ = m.Disconnect(session.Conn.Address())
		}
	}
}

// Get returns the session for address.
func (m *Manager) Get(address string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[address]
	return session, ok
}

// Sessions returns all known sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Running reports how many viewers are alive.
func (m *Manager) Running() int {
	n := 0
	for _, session := range m.Sessions() {
		if session.active() {
			n++
		}
	}
	return n
}
