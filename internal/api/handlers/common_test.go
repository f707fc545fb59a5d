package handlers

import (
	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
	"github.com/squadmgr/squad-server-manager/internal/updates"
)

// mockStore implements ServerStore for testing
type mockStore struct {
	servers map[int64]models.ServerConfig
	nextID  int64
}

func newMockStore() *mockStore {
	return &mockStore{servers: make(map[int64]models.ServerConfig), nextID: 1}
}

func (m *mockStore) Find(id int64) (models.ServerConfig, error) {
	cfg, ok := m.servers[id]
	if !ok {
		return models.ServerConfig{}, errs.Wrap(errs.ErrNotFound, "server %d", id)
	}
	return cfg, nil
}

func (m *mockStore) FindAll() ([]models.ServerConfig, error) {
	out := make([]models.ServerConfig, 0, len(m.servers))
	for _, cfg := range m.servers {
		out = append(out, cfg)
	}
	return out, nil
}

func (m *mockStore) Create(cfg *models.ServerConfig) error {
	cfg.ID = m.nextID
	m.nextID++
	m.servers[cfg.ID] = *cfg
	return nil
}

func (m *mockStore) Update(cfg models.ServerConfig) error {
	if _, ok := m.servers[cfg.ID]; !ok {
		return errs.Wrap(errs.ErrNotFound, "server %d", cfg.ID)
	}
	m.servers[cfg.ID] = cfg
	return nil
}

func (m *mockStore) Delete(id int64) error {
	if _, ok := m.servers[id]; !ok {
		return errs.Wrap(errs.ErrNotFound, "server %d", id)
	}
	delete(m.servers, id)
	return nil
}

// mockController implements ServerController for testing
type mockController struct {
	running     map[int64]bool
	stopErr     error
	commandOut  string
	commandErr  error
	lastCommand string
}

func newMockController() *mockController {
	return &mockController{running: make(map[int64]bool)}
}

func (m *mockController) StartServer(id int64) error {
	if m.running[id] {
		return errs.Wrap(errs.ErrConflict, "server %d is already running", id)
	}
	m.running[id] = true
	return nil
}

func (m *mockController) StopServer(id int64) error {
	if m.stopErr != nil {
		return m.stopErr
	}
	delete(m.running, id)
	return nil
}

func (m *mockController) IsRunning(id int64) bool {
	return m.running[id]
}

func (m *mockController) Status(id int64) (models.ServerStatus, error) {
	return models.ServerStatus{
		ID:         id,
		IsRunning:  m.running[id],
		RconStatus: models.RconDisconnected,
		CurrentMap: models.UnknownMap(),
		NextMap:    models.UnknownMap(),
	}, nil
}

func (m *mockController) ExecuteCommand(id int64, command string) (string, error) {
	m.lastCommand = command
	if m.commandErr != nil {
		return "", m.commandErr
	}
	return m.commandOut, nil
}

// mockUpdates implements UpdateRunner for testing
type mockUpdates struct {
	active   map[int64]bool
	startErr error
}

func newMockUpdates() *mockUpdates {
	return &mockUpdates{active: make(map[int64]bool)}
}

func (m *mockUpdates) Start(serverID int64, installPath string) (*updates.Job, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	return nil, errs.Wrap(errs.ErrValidation, "no update command configured")
}

func (m *mockUpdates) Active(serverID int64) (*updates.Job, bool) {
	return nil, m.active[serverID]
}

// Ensure interface compliance
var (
	_ ServerStore      = &mockStore{}
	_ ServerController = &mockController{}
	_ UpdateRunner     = &mockUpdates{}
)
