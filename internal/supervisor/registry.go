package supervisor

import (
	"log"
	"sync"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
)

// Registry maps server ids to their live supervisors. Liveness is always
// answered from this map, never from the persisted running flag. Owned by the
// composition root and injected into the API layer.
type Registry struct {
	store          ConfigStore
	chatLogDir     string
	commandTimeout time.Duration

	// StopTimeout overrides the per-supervisor stop wait; zero keeps the
	// default.
	StopTimeout time.Duration

	// OnServerExit fires after a process exits on its own; the composition
	// root hooks update-stream finalization here.
	OnServerExit func(id int64)
	// OnChat fires for every chat/event log line of any server.
	OnChat func(id int64, line string)

	mu          sync.Mutex
	supervisors map[int64]*Supervisor
}

// NewRegistry creates an empty registry.
func NewRegistry(store ConfigStore, chatLogDir string, commandTimeout time.Duration) *Registry {
	return &Registry{
		store:          store,
		chatLogDir:     chatLogDir,
		commandTimeout: commandTimeout,
		supervisors:    make(map[int64]*Supervisor),
	}
}

// StartServer spawns the server for an id. A second start while one is live
// is a conflict, not a restart.
func (r *Registry) StartServer(id int64) error {
	cfg, err := r.store.Find(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.supervisors[id]; exists {
		r.mu.Unlock()
		return errs.Wrap(errs.ErrConflict, "server %d is already running", id)
	}
	sup := New(id, Options{
		Store:          r.store,
		ChatLog:        NewChatLog(r.chatLogDir, id),
		CommandTimeout: r.commandTimeout,
		StopTimeout:    r.StopTimeout,
		OnExit:         func(id int64) { r.handleExit(id) },
		OnChat:         func(id int64, line string) { r.broadcastChat(id, line) },
	})
	r.supervisors[id] = sup
	r.mu.Unlock()

	if err := sup.Start(cfg); err != nil {
		r.remove(id, sup)
		sup.Stop()
		return err
	}
	return nil
}

// StopServer terminates a running server and waits for the process to exit.
// Stopping a server with no live supervisor is a no-op. A process that
// outlives the stop timeout keeps its registry entry, so liveness and status
// keep reporting it until a retried stop succeeds or it exits on its own.
func (r *Registry) StopServer(id int64) error {
	r.mu.Lock()
	sup, exists := r.supervisors[id]
	r.mu.Unlock()
	if !exists {
		return nil
	}

	if err := sup.Stop(); err != nil {
		return err
	}
	r.remove(id, sup)
	return nil
}

// IsRunning answers liveness from the in-memory map.
func (r *Registry) IsRunning(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.supervisors[id]
	return exists
}

// Status returns the aggregated live view for an id. A server without a
// supervisor reports a plain stopped snapshot from the config record.
func (r *Registry) Status(id int64) (models.ServerStatus, error) {
	r.mu.Lock()
	sup, exists := r.supervisors[id]
	r.mu.Unlock()
	if exists {
		return sup.Status()
	}

	cfg, err := r.store.Find(id)
	if err != nil {
		return models.ServerStatus{}, err
	}
	return models.ServerStatus{
		ID:         cfg.ID,
		Name:       cfg.Name,
		IsRunning:  false,
		RconStatus: models.RconDisconnected,
		CurrentMap: models.UnknownMap(),
		NextMap:    models.UnknownMap(),
	}, nil
}

// ExecuteCommand forwards one raw RCON command to a running server.
func (r *Registry) ExecuteCommand(id int64, command string) (string, error) {
	r.mu.Lock()
	sup, exists := r.supervisors[id]
	r.mu.Unlock()
	if !exists {
		return "", errs.Wrap(errs.ErrRconNotConnected, "server %d is not running", id)
	}
	return sup.ExecuteCommand(command)
}

// StopAll stops every running server; used at shutdown and before the
// process exits.
func (r *Registry) StopAll() {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.supervisors))
	for id := range r.supervisors {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.StopServer(id); err != nil {
			log.Printf("[Registry] Failed to stop server %d: %v", id, err)
		}
	}
}

func (r *Registry) handleExit(id int64) {
	r.mu.Lock()
	delete(r.supervisors, id)
	r.mu.Unlock()

	if r.OnServerExit != nil {
		r.OnServerExit(id)
	}
}

func (r *Registry) broadcastChat(id int64, line string) {
	if r.OnChat != nil {
		r.OnChat(id, line)
	}
}

// remove drops an entry only if it still maps to the same supervisor; an exit
// event may already have replaced or cleared it.
func (r *Registry) remove(id int64, sup *Supervisor) {
	r.mu.Lock()
	if current, exists := r.supervisors[id]; exists && current == sup {
		delete(r.supervisors, id)
	}
	r.mu.Unlock()
}
