// Package updates runs the external server update/install command and streams
// its progress as discrete events to one subscriber per server id.
package updates

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

// EventType discriminates stream events. A stream always ends with exactly
// one terminal event, either complete or error, followed by channel close.
type EventType string

const (
	EventLog      EventType = "log"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// Event is one progress message of an update job.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

// Job is one in-flight update for one server id.
type Job struct {
	ID       string
	ServerID int64

	events chan Event
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	attached bool
}

// Subscribe claims the job's single event stream. A second subscriber is
// rejected rather than silently splitting the events between readers.
func (j *Job) Subscribe() (<-chan Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.attached {
		return nil, errs.Wrap(errs.ErrConflict, "update stream for server %d already has a subscriber", j.ServerID)
	}
	j.attached = true
	return j.events, nil
}

// Unsubscribe releases the stream claim so a dropped client can re-attach.
func (j *Job) Unsubscribe() {
	j.mu.Lock()
	j.attached = false
	j.mu.Unlock()
}

// emit delivers one progress event. Events after the terminal one, or to a
// subscriber that fell behind, are dropped.
func (j *Job) emit(ev Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.events <- ev:
	default:
	}
}

// terminate emits the terminal event and closes the stream, at most once.
func (j *Job) terminate(ev Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.events <- ev:
	default:
		log.Printf("[Updates] Dropped terminal event for server %d (no subscriber)", j.ServerID)
	}
	j.closed = true
	close(j.events)
}

// Manager enforces at most one active update per server id.
type Manager struct {
	command string

	mu   sync.Mutex
	jobs map[int64]*Job
}

// NewManager creates a manager around the configured update command. The
// command is run with the server's install path appended as its last
// argument.
func NewManager(command string) *Manager {
	return &Manager{
		command: command,
		jobs:    make(map[int64]*Job),
	}
}

// Start launches an update for a server. A second start while one is in
// flight is rejected, not queued.
func (m *Manager) Start(serverID int64, installPath string) (*Job, error) {
	parts := strings.Fields(m.command)
	if len(parts) == 0 {
		return nil, errs.Wrap(errs.ErrValidation, "no update command configured")
	}

	m.mu.Lock()
	if _, active := m.jobs[serverID]; active {
		m.mu.Unlock()
		return nil, errs.Wrap(errs.ErrConflict, "update already in progress for server %d", serverID)
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:       uuid.NewString(),
		ServerID: serverID,
		events:   make(chan Event, 256),
		cancel:   cancel,
	}
	m.jobs[serverID] = job
	m.mu.Unlock()

	args := append(parts[1:], installPath)
	go m.run(ctx, job, parts[0], args)
	return job, nil
}

// Active returns the in-flight job for a server id, if any.
func (m *Manager) Active(serverID int64) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[serverID]
	return job, ok
}

// FailActive aborts any in-flight update for a server with a terminal error;
// called when the server process exits underneath the update.
func (m *Manager) FailActive(serverID int64, message string) {
	m.mu.Lock()
	job, ok := m.jobs[serverID]
	if ok {
		delete(m.jobs, serverID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	job.cancel()
	job.terminate(Event{Type: EventError, Message: message})
}

func (m *Manager) run(ctx context.Context, job *Job, name string, args []string) {
	defer m.release(job)

	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		job.terminate(Event{Type: EventError, Message: err.Error()})
		return
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		job.terminate(Event{Type: EventError, Message: fmt.Sprintf("failed to start update: %v", err)})
		return
	}
	m.stream(job, stdout)

	if err := cmd.Wait(); err != nil {
		job.terminate(Event{Type: EventError, Message: fmt.Sprintf("update failed: %v", err)})
		return
	}
	job.terminate(Event{Type: EventComplete, Message: "update complete"})
}

func (m *Manager) stream(job *Job, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		job.emit(Event{Type: EventLog, Message: scanner.Text()})
	}
}

func (m *Manager) release(job *Job) {
	m.mu.Lock()
	if current, ok := m.jobs[job.ServerID]; ok && current == job {
		delete(m.jobs, job.ServerID)
	}
	m.mu.Unlock()
	job.cancel()
}
