package supervisor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
	"github.com/squadmgr/squad-server-manager/internal/rcon"
	"github.com/squadmgr/squad-server-manager/internal/squad"
)

// Reconnect delays. A close is usually a restart in progress, so it retries
// faster than an auth/handshake error, which usually means a misconfigured
// password and is not worth hammering.
const (
	initialConnectDelay  = 5 * time.Second
	reconnectAfterClose  = 15 * time.Second
	reconnectAfterError  = 60 * time.Second
	reconnectAfterHangup = 5 * time.Second
)

// defaultStopTimeout bounds how long Stop waits for the process to exit
// after SIGTERM before reporting it still alive.
const defaultStopTimeout = 30 * time.Second

// ConfigStore is the slice of the persistence layer the supervisor needs.
type ConfigStore interface {
	Find(id int64) (models.ServerConfig, error)
	SetRunning(id int64, running bool) error
}

type dialFunc func(host string, port int, password string, timeout time.Duration, handlers rcon.EventHandlers) (*rcon.Session, error)

// Options carries the dependencies of one Supervisor.
type Options struct {
	Store          ConfigStore
	ChatLog        *ChatLog
	CommandTimeout time.Duration
	// StopTimeout bounds the wait for process exit after SIGTERM; zero means
	// the default.
	StopTimeout time.Duration

	// OnExit fires after the process exit has been fully handled; the
	// registry uses it to drop this supervisor and finalize update streams.
	OnExit func(id int64)
	// OnChat fires for every line appended to the chat log.
	OnChat func(id int64, line string)
}

// Supervisor drives one server's process and RCON lifecycle. All mutable
// state below the calls channel is owned by the run loop; external goroutines
// reach it only by posting closures, so the check-then-act transitions of the
// reconnect machine need no locks.
type Supervisor struct {
	id    int64
	opts  Options
	dial  dialFunc
	calls chan func()
	done  chan struct{}

	// run-loop-owned state
	cfg            models.ServerConfig
	proc           *Process
	session        *rcon.Session
	connGen        int
	sessionGen     int
	rconConnecting bool
	rconRetrying   bool
	reconnectTimer *time.Timer
}

// New creates a supervisor for one server id and starts its event loop.
func New(id int64, opts Options) *Supervisor {
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	s := &Supervisor{
		id:    id,
		opts:  opts,
		dial:  rcon.Dial,
		calls: make(chan func(), 16),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Supervisor) run() {
	for {
		select {
		case fn := <-s.calls:
			fn()
		case <-s.done:
			return
		}
	}
}

// post queues a closure onto the run loop; dropped once the loop has ended.
func (s *Supervisor) post(fn func()) {
	select {
	case s.calls <- fn:
	case <-s.done:
	}
}

// call runs a closure on the loop and waits for it.
func (s *Supervisor) call(fn func()) {
	ran := make(chan struct{})
	s.post(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
	case <-s.done:
	}
}

// Start spawns the process and schedules the initial RCON connect. The
// running flag is persisted as soon as the spawn succeeds, before the OS has
// proven the process healthy; failures after that point surface through
// status queries, not through this call.
func (s *Supervisor) Start(cfg models.ServerConfig) error {
	var err error
	s.call(func() {
		if s.proc != nil {
			err = errs.Wrap(errs.ErrConflict, "server %d is already running", s.id)
			return
		}

		var proc *Process
		proc, err = Spawn(cfg)
		if err != nil {
			return
		}
		s.cfg = cfg
		s.proc = proc
		log.Printf("[Supervisor %d] Spawned %s (pid %d)", s.id, cfg.Name, proc.PID)

		if storeErr := s.opts.Store.SetRunning(s.id, true); storeErr != nil {
			log.Printf("[Supervisor %d] Failed to persist running flag: %v", s.id, storeErr)
		}

		go s.watchExit(proc)
		s.scheduleReconnect(initialConnectDelay, false)
	})
	return err
}

// Stop terminates the process and tears down the RCON session. Stopping a
// server that is not running is a no-op. The process handle is kept until the
// OS confirms the exit: a process that ignores SIGTERM stays tracked, the
// running flag stays set, and the timeout is reported to the caller so the
// operator can retry. There is no SIGKILL escalation.
func (s *Supervisor) Stop() error {
	var proc *Process
	s.call(func() {
		s.cancelReconnect()
		s.closeSession()
		proc = s.proc
		if proc != nil {
			log.Printf("[Supervisor %d] Stopping pid %d", s.id, proc.PID)
		}
	})
	if proc == nil {
		s.shutdown()
		return nil
	}

	stopErr := proc.Stop()
	select {
	case <-proc.Done():
		// Bookkeeping normally runs via watchExit; run it here too so the
		// caller observes the cleared state. handleExit ignores a handle it
		// has already processed.
		s.call(func() { s.handleExit(proc) })
		return nil
	case <-time.After(s.opts.StopTimeout):
		if stopErr != nil {
			return stopErr
		}
		return errs.Wrap(errs.ErrConflict, "server %d (pid %d) still running %v after stop signal", s.id, proc.PID, s.opts.StopTimeout)
	}
}

// ExecuteCommand runs one raw RCON command and returns the response verbatim.
// It fails fast when no session is live. A failure that looks like a dead
// connection drops the session and schedules a fast reconnect, but is still
// reported to the caller rather than retried transparently.
func (s *Supervisor) ExecuteCommand(command string) (string, error) {
	session := s.currentSession()
	if session == nil {
		return "", errs.Wrap(errs.ErrRconNotConnected, "server %d", s.id)
	}

	out, err := session.Execute(command)
	if err != nil && isConnectionError(err) {
		s.post(func() {
			if s.session == session {
				s.closeSession()
				if s.proc != nil {
					s.scheduleReconnect(reconnectAfterHangup, true)
				}
			}
		})
	}
	return out, err
}

// Status aggregates config, process and RCON state into one snapshot. Each
// live query parses independently; a degraded subsystem yields its unknown
// sentinel instead of failing the call.
func (s *Supervisor) Status() (models.ServerStatus, error) {
	cfg, err := s.opts.Store.Find(s.id)
	if err != nil {
		return models.ServerStatus{}, err
	}

	var (
		pid       int
		running   bool
		rconState string
		session   *rcon.Session
	)
	s.call(func() {
		running = s.proc != nil
		if running {
			pid = s.proc.PID
		}
		session = s.session
		rconState = s.rconState()
	})

	status := models.ServerStatus{
		ID:         cfg.ID,
		Name:       cfg.Name,
		IsRunning:  running,
		PID:        pid,
		RconStatus: rconState,
		CurrentMap: models.UnknownMap(),
		NextMap:    models.UnknownMap(),
	}
	if session == nil {
		return status, nil
	}

	// Sequential on purpose: the RCON connection supports one in-flight
	// command, and the session serializes anyway.
	if out, err := session.Execute("ListPlayers"); err == nil {
		players, disconnected := squad.ParsePlayerList(out)
		count := len(players)
		status.PlayerCount = &count
		status.Players = players
		status.Disconnected = disconnected
	} else {
		log.Printf("[Supervisor %d] ListPlayers failed: %v", s.id, err)
	}
	if out, err := session.Execute("ShowCurrentMap"); err == nil {
		status.CurrentMap = squad.ParseCurrentMap(out)
	} else {
		log.Printf("[Supervisor %d] ShowCurrentMap failed: %v", s.id, err)
	}
	if out, err := session.Execute("ShowNextMap"); err == nil {
		status.NextMap = squad.ParseNextMap(out)
	} else {
		log.Printf("[Supervisor %d] ShowNextMap failed: %v", s.id, err)
	}
	return status, nil
}

// PID returns the live process id, or 0 when nothing is running.
func (s *Supervisor) PID() int {
	var pid int
	s.call(func() {
		if s.proc != nil {
			pid = s.proc.PID
		}
	})
	return pid
}

func (s *Supervisor) currentSession() *rcon.Session {
	var session *rcon.Session
	s.call(func() { session = s.session })
	return session
}

func (s *Supervisor) rconState() string {
	switch {
	case s.session != nil:
		return models.RconConnected
	case s.rconConnecting:
		return models.RconConnecting
	case s.rconRetrying:
		return models.RconRetrying
	default:
		return models.RconDisconnected
	}
}

// connect starts one RCON connect attempt. Run-loop context only. A second
// call while one attempt is outstanding, or while a session is live, is a
// no-op; that exclusivity is what keeps the socket count at zero or one.
func (s *Supervisor) connect() {
	if s.session != nil || s.rconConnecting {
		return
	}
	if s.cfg.RconPassword == "" || s.cfg.RconPort <= 0 {
		log.Printf("[Supervisor %d] RCON not configured, skipping connect", s.id)
		return
	}

	s.rconConnecting = true
	s.cancelReconnect()
	s.connGen++
	gen := s.connGen
	cfg := s.cfg

	go func() {
		session, err := s.dial("127.0.0.1", cfg.RconPort, cfg.RconPassword, s.opts.CommandTimeout, s.handlersFor(gen))
		s.post(func() { s.finishConnect(gen, session, err) })
	}()
}

// finishConnect completes a connect attempt. Run-loop context only.
func (s *Supervisor) finishConnect(gen int, session *rcon.Session, err error) {
	s.rconConnecting = false

	if s.proc == nil {
		// Process died while we were dialing.
		if session != nil {
			session.Close()
		}
		return
	}
	if err != nil {
		log.Printf("[Supervisor %d] RCON connect failed: %v", s.id, err)
		s.scheduleReconnect(reconnectAfterError, true)
		return
	}
	if session.IsClosed() {
		// Died between the handshake and this callback.
		s.scheduleReconnect(reconnectAfterClose, true)
		return
	}

	log.Printf("[Supervisor %d] RCON connected", s.id)
	s.cancelReconnect()
	s.session = session
	s.sessionGen = gen
	s.rconRetrying = false
}

// handleClosed reacts to a session dying underneath us. Run-loop context via
// the posted closure in handlersFor. The generation check discards closes
// from sessions that have already been replaced.
func (s *Supervisor) handleClosed(gen int, err error) {
	if s.session == nil || gen != s.sessionGen {
		return
	}
	if err != nil {
		log.Printf("[Supervisor %d] RCON connection lost: %v", s.id, err)
	}
	s.session = nil
	if s.proc != nil {
		s.scheduleReconnect(reconnectAfterClose, true)
	}
}

// scheduleReconnect arms the single reconnect timer, replacing any pending
// one. Run-loop context only.
func (s *Supervisor) scheduleReconnect(delay time.Duration, retrying bool) {
	s.cancelReconnect()
	s.rconRetrying = retrying
	s.reconnectTimer = time.AfterFunc(delay, func() {
		s.post(func() {
			s.reconnectTimer = nil
			s.connect()
		})
	})
}

func (s *Supervisor) cancelReconnect() {
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
}

func (s *Supervisor) closeSession() {
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
	s.rconConnecting = false
	s.rconRetrying = false
}

func (s *Supervisor) watchExit(proc *Process) {
	<-proc.Done()
	s.post(func() { s.handleExit(proc) })
}

// handleExit runs when the OS process terminates on its own. Run-loop context
// only. A handle replaced by a stop/start cycle is ignored.
func (s *Supervisor) handleExit(proc *Process) {
	if s.proc != proc {
		return
	}
	log.Printf("[Supervisor %d] Process %d exited: %v", s.id, proc.PID, proc.ExitError())

	s.cancelReconnect()
	s.closeSession()
	s.proc = nil
	if err := s.opts.Store.SetRunning(s.id, false); err != nil {
		log.Printf("[Supervisor %d] Failed to persist running flag: %v", s.id, err)
	}

	if s.opts.OnExit != nil {
		s.opts.OnExit(s.id)
	}
	s.shutdown()
}

func (s *Supervisor) shutdown() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// handlersFor builds the event callbacks for one connect attempt. Rebuilt on
// every connect so a replaced session never fires stale closures into the
// loop.
func (s *Supervisor) handlersFor(gen int) rcon.EventHandlers {
	return rcon.EventHandlers{
		OnChat: func(m rcon.ChatMessage) {
			go s.logChat(m)
		},
		OnWarn: func(e rcon.PlayerWarned) {
			s.logEvent(fmt.Sprintf("%s was warned: %s", e.Name, e.Message))
		},
		OnKick: func(e rcon.PlayerKicked) {
			s.logEvent(fmt.Sprintf("%s was kicked", e.Name))
		},
		OnBan: func(e rcon.PlayerBanned) {
			s.logEvent(fmt.Sprintf("%s was banned for %s", e.Name, e.Interval))
		},
		OnSquadCreated: func(e rcon.SquadCreated) {
			s.logEvent(fmt.Sprintf("%s created squad %d %q on %s", e.Name, e.SquadID, e.SquadName, e.TeamName))
		},
		OnAdminCamera: func(e rcon.AdminCamera) {
			verb := "left"
			if e.Possessed {
				verb = "entered"
			}
			s.logEvent(fmt.Sprintf("%s %s admin camera", e.Name, verb))
		},
		OnClosed: func(err error) {
			s.post(func() { s.handleClosed(gen, err) })
		},
	}
}

// logChat appends one chat line, enriched best-effort with the sender's team
// and squad from a roster query. Enrichment failures fall back to placeholder
// markers and never block the log write.
func (s *Supervisor) logChat(m rcon.ChatMessage) {
	team, squadName := "?", "?"
	if session := s.currentSession(); session != nil {
		if out, err := session.Execute("ListPlayers"); err == nil {
			players, _ := squad.ParsePlayerList(out)
			for _, p := range players {
				if p.EOSID == m.EOSID {
					team = fmt.Sprintf("%d", p.TeamID)
					if p.SquadID != nil {
						squadName = fmt.Sprintf("%d", *p.SquadID)
					} else {
						squadName = "none"
					}
					break
				}
			}
		}
	}
	s.logEvent(fmt.Sprintf("[%s] %s (Team: %s, Squad: %s): %s", m.Channel, m.Name, team, squadName, m.Message))
}

func (s *Supervisor) logEvent(line string) {
	if s.opts.ChatLog != nil {
		if err := s.opts.ChatLog.Append(line); err != nil {
			log.Printf("[Supervisor %d] Failed to append chat log: %v", s.id, err)
		}
	}
	if s.opts.OnChat != nil {
		s.opts.OnChat(s.id, line)
	}
}

func isConnectionError(err error) bool {
	if errors.Is(err, errs.ErrRconNotConnected) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "closed") || strings.Contains(msg, "not connected") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "reset by peer")
}
