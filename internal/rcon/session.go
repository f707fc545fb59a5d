package rcon

import (
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

const (
	dialTimeout = 5 * time.Second
	authID      = 1
)

// Session is one authenticated RCON connection. The protocol carries no
// request/response correlation id, so Execute serializes commands internally;
// a second command is never written before the previous response arrived.
type Session struct {
	addr     string
	conn     net.Conn
	timeout  time.Duration
	handlers EventHandlers

	execMu    sync.Mutex
	idMu      sync.Mutex
	nextID    int32
	responses chan packet
	events    chan string

	closeMu  sync.Mutex
	closed   chan struct{}
	closeErr error
}

// Dial connects and authenticates against the server's RCON port. Handlers
// are bound for the lifetime of this session; a replacement session needs a
// fresh set.
func Dial(host string, port int, password string, commandTimeout time.Duration, handlers EventHandlers) (*Session, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, errs.Wrap(errs.ErrRconProtocol, "dial %s: %v", addr, err)
	}

	s := &Session{
		addr:      addr,
		conn:      conn,
		timeout:   commandTimeout,
		handlers:  handlers,
		nextID:    authID + 1,
		responses: make(chan packet, 16),
		events:    make(chan string, 64),
		closed:    make(chan struct{}),
	}

	if err := s.authenticate(password); err != nil {
		conn.Close()
		return nil, err
	}

	go s.readLoop()
	go s.dispatchLoop()
	return s, nil
}

func (s *Session) authenticate(password string) error {
	s.conn.SetDeadline(time.Now().Add(dialTimeout))
	defer s.conn.SetDeadline(time.Time{})

	if err := writePacket(s.conn, packet{ID: authID, Type: packetTypeAuth, Body: password}); err != nil {
		return errs.Wrap(errs.ErrRconProtocol, "auth write: %v", err)
	}

	// The server may send an empty response before the auth reply; skip
	// anything that is not the reply to our auth packet.
	for {
		p, err := readPacket(s.conn)
		if err != nil {
			return errs.Wrap(errs.ErrRconProtocol, "auth read: %v", err)
		}
		if p.Type != packetTypeAuthReply {
			continue
		}
		if p.ID == -1 {
			return errs.Wrap(errs.ErrRconProtocol, "authentication rejected")
		}
		if p.ID == authID {
			return nil
		}
	}
}

// Execute sends one command and returns the raw response text verbatim. It
// fails once the session is closed and never retries.
func (s *Session) Execute(command string) (string, error) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	select {
	case <-s.closed:
		return "", errs.Wrap(errs.ErrRconNotConnected, "session closed")
	default:
	}

	execID := s.claimID()
	termID := s.claimID()

	if err := writePacket(s.conn, packet{ID: execID, Type: packetTypeExecCommand, Body: command}); err != nil {
		return "", errs.Wrap(errs.ErrRconProtocol, "write: %v", err)
	}
	// Empty follow-up command: its echoed response marks the end of the
	// (possibly multi-packet) real response.
	if err := writePacket(s.conn, packet{ID: termID, Type: packetTypeExecCommand, Body: ""}); err != nil {
		return "", errs.Wrap(errs.ErrRconProtocol, "write terminator: %v", err)
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var response strings.Builder
	for {
		select {
		case p := <-s.responses:
			switch p.ID {
			case execID:
				response.WriteString(p.Body)
			case termID:
				return response.String(), nil
			default:
				// response to a command from a previous, timed-out exchange
			}
		case <-timer.C:
			return "", errs.Wrap(errs.ErrRconProtocol, "command timed out after %v", s.timeout)
		case <-s.closed:
			return "", errs.Wrap(errs.ErrRconNotConnected, "connection closed")
		}
	}
}

// IsClosed reports whether the session has been torn down.
func (s *Session) IsClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Close tears the connection down without firing OnClosed; the caller already
// knows the session is gone.
func (s *Session) Close() error {
	s.shutdown(nil, false)
	return nil
}

func (s *Session) shutdown(err error, fireHandler bool) {
	s.closeMu.Lock()
	select {
	case <-s.closed:
		s.closeMu.Unlock()
		return
	default:
	}
	s.closeErr = err
	close(s.closed)
	s.closeMu.Unlock()

	s.conn.Close()

	if fireHandler && s.handlers.OnClosed != nil {
		s.handlers.OnClosed(err)
	}
}

func (s *Session) readLoop() {
	for {
		p, err := readPacket(s.conn)
		if err != nil {
			s.shutdown(err, true)
			return
		}

		if p.Type == packetTypeChat {
			select {
			case s.events <- p.Body:
			case <-s.closed:
				return
			}
			continue
		}

		select {
		case s.responses <- p:
		case <-s.closed:
			return
		}
	}
}

func (s *Session) dispatchLoop() {
	for {
		select {
		case body := <-s.events:
			if body == "" {
				continue
			}
			if !dispatchEvent(s.handlers, body) {
				log.Printf("[RCON %s] unrecognized event: %s", s.addr, body)
			}
		case <-s.closed:
			return
		}
	}
}

func (s *Session) claimID() int32 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := s.nextID
	s.nextID++
	if s.nextID < 0 {
		s.nextID = authID + 1
	}
	return id
}
