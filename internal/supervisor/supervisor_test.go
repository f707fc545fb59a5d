package supervisor

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
	"github.com/squadmgr/squad-server-manager/internal/rcon"
)

type mockStore struct {
	mu       sync.Mutex
	cfg      models.ServerConfig
	findErr  error
	running  map[int64]bool
	setCalls int
}

func newMockStore(cfg models.ServerConfig) *mockStore {
	return &mockStore{cfg: cfg, running: make(map[int64]bool)}
}

func (m *mockStore) Find(id int64) (models.ServerConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return models.ServerConfig{}, m.findErr
	}
	if id != m.cfg.ID {
		return models.ServerConfig{}, errs.Wrap(errs.ErrNotFound, "server %d", id)
	}
	cfg := m.cfg
	cfg.IsRunning = m.running[id]
	return cfg, nil
}

func (m *mockStore) SetRunning(id int64, running bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running[id] = running
	m.setCalls++
	return nil
}

func (m *mockStore) runningFlag(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running[id]
}

func (m *mockStore) setRunningCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}

// writeFakeExecutable lays out a minimal install directory whose server
// binary just sleeps.
func writeFakeExecutable(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake executable script requires a unix shell")
	}
	installPath := t.TempDir()
	exe := filepath.Join(installPath, "SquadGame", "Binaries", "Linux", "SquadGameServer")
	if err := os.MkdirAll(filepath.Dir(exe), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(exe, []byte("#!/bin/sh\nsleep 60\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return installPath
}

func testConfig(id int64, installPath string) models.ServerConfig {
	return models.ServerConfig{
		ID:          id,
		Name:        "test server",
		InstallPath: installPath,
		GamePort:    7787,
		QueryPort:   27165,
		RconPort:    21114,
		BeaconPort:  15000,
	}
}

func TestStopWithoutProcessIsNoOp(t *testing.T) {
	store := newMockStore(testConfig(1, "/nonexistent"))
	sup := New(1, Options{Store: store})

	if err := sup.Stop(); err != nil {
		t.Errorf("stop on idle supervisor returned %v", err)
	}
	if store.setRunningCalls() != 0 {
		t.Errorf("stop on idle supervisor persisted state %d times", store.setRunningCalls())
	}
}

func TestStartMissingExecutable(t *testing.T) {
	cfg := testConfig(1, t.TempDir())
	store := newMockStore(cfg)
	sup := New(1, Options{Store: store})
	defer sup.Stop()

	err := sup.Start(cfg)
	if !errors.Is(err, errs.ErrExecutableNotFound) {
		t.Fatalf("expected executable-not-found, got %v", err)
	}
	if store.runningFlag(1) {
		t.Error("failed spawn must not persist running=true")
	}
}

func TestExecuteCommandWithoutSession(t *testing.T) {
	store := newMockStore(testConfig(1, "/nonexistent"))
	sup := New(1, Options{Store: store})
	defer sup.Stop()

	_, err := sup.ExecuteCommand("ListPlayers")
	if !errors.Is(err, errs.ErrRconNotConnected) {
		t.Errorf("expected not-connected, got %v", err)
	}
}

// fakeRunningProcess plants a process handle that is never signalled; the
// cleanup clears it before Stop so terminate is never called on a bogus pid.
func fakeRunningProcess(t *testing.T, sup *Supervisor) {
	t.Helper()
	sup.call(func() { sup.proc = &Process{done: make(chan struct{})} })
	t.Cleanup(func() {
		sup.call(func() { sup.proc = nil })
		sup.Stop()
	})
}

func TestExclusiveConnectAttempt(t *testing.T) {
	store := newMockStore(testConfig(1, "/nonexistent"))
	sup := New(1, Options{Store: store})

	var mu sync.Mutex
	dials := 0
	release := make(chan struct{})
	sup.dial = func(host string, port int, password string, timeout time.Duration, h rcon.EventHandlers) (*rcon.Session, error) {
		mu.Lock()
		dials++
		mu.Unlock()
		<-release
		return nil, errors.New("refused")
	}

	sup.call(func() { sup.cfg = models.ServerConfig{RconPort: 21114, RconPassword: "pw"} })
	fakeRunningProcess(t, sup)

	sup.call(func() { sup.connect() })
	sup.call(func() { sup.connect() })
	close(release)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if dials != 1 {
		t.Errorf("expected exactly one dial, got %d", dials)
	}
}

func TestSingleReconnectTimer(t *testing.T) {
	store := newMockStore(testConfig(1, "/nonexistent"))
	sup := New(1, Options{Store: store})

	sup.call(func() { sup.cfg = models.ServerConfig{RconPort: 21114, RconPassword: "pw"} })
	fakeRunningProcess(t, sup)

	// Re-arming must replace the pending timer, not stack a second one.
	var first *time.Timer
	sup.call(func() {
		sup.scheduleReconnect(time.Hour, true)
		first = sup.reconnectTimer
	})
	sup.call(func() {
		sup.scheduleReconnect(time.Hour, true)
		if sup.reconnectTimer == first {
			t.Error("rescheduling did not replace the pending timer")
		}
	})
	if first.Stop() {
		t.Error("previous timer was still armed after rescheduling")
	}
}

func TestConnectSkipsWithoutCredentials(t *testing.T) {
	store := newMockStore(testConfig(1, "/nonexistent"))
	sup := New(1, Options{Store: store})

	var mu sync.Mutex
	dialed := false
	sup.dial = func(host string, port int, password string, timeout time.Duration, h rcon.EventHandlers) (*rcon.Session, error) {
		mu.Lock()
		dialed = true
		mu.Unlock()
		return nil, errors.New("refused")
	}

	sup.call(func() { sup.cfg = models.ServerConfig{RconPort: 21114} })
	fakeRunningProcess(t, sup)

	sup.call(func() { sup.connect() })
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	if dialed {
		t.Error("connect without a password must not dial")
	}
	mu.Unlock()
	sup.call(func() {
		if sup.reconnectTimer != nil {
			t.Error("config problem must not schedule a retry")
		}
	})
}

func TestStartStopCycle(t *testing.T) {
	installPath := writeFakeExecutable(t)
	cfg := testConfig(7, installPath)
	store := newMockStore(cfg)
	registry := NewRegistry(store, t.TempDir(), time.Second)

	if err := registry.StartServer(7); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}
	if !registry.IsRunning(7) {
		t.Error("registry should report server 7 running")
	}
	if !store.runningFlag(7) {
		t.Error("persisted running flag should be true after start")
	}

	if err := registry.StopServer(7); err != nil {
		t.Fatalf("StopServer failed: %v", err)
	}
	if registry.IsRunning(7) {
		t.Error("registry entry should be cleared after stop")
	}
	if store.runningFlag(7) {
		t.Error("persisted running flag should be false after stop")
	}
}

type multiStore struct {
	mu      sync.Mutex
	cfgs    map[int64]models.ServerConfig
	running map[int64]bool
}

func (m *multiStore) Find(id int64) (models.ServerConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.cfgs[id]
	if !ok {
		return models.ServerConfig{}, errs.Wrap(errs.ErrNotFound, "server %d", id)
	}
	return cfg, nil
}

func (m *multiStore) SetRunning(id int64, running bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running[id] = running
	return nil
}

func TestStopAllStopsEveryServer(t *testing.T) {
	installPath := writeFakeExecutable(t)
	store := &multiStore{
		cfgs: map[int64]models.ServerConfig{
			1: testConfig(1, installPath),
			2: testConfig(2, installPath),
		},
		running: make(map[int64]bool),
	}
	registry := NewRegistry(store, t.TempDir(), time.Second)

	for _, id := range []int64{1, 2} {
		if err := registry.StartServer(id); err != nil {
			t.Fatalf("StartServer(%d) failed: %v", id, err)
		}
	}

	registry.StopAll()

	for _, id := range []int64{1, 2} {
		if registry.IsRunning(id) {
			t.Errorf("server %d should be stopped after StopAll", id)
		}
	}
}

func TestStartServerTwiceConflicts(t *testing.T) {
	installPath := writeFakeExecutable(t)
	cfg := testConfig(3, installPath)
	store := newMockStore(cfg)
	registry := NewRegistry(store, t.TempDir(), time.Second)
	defer registry.StopAll()

	if err := registry.StartServer(3); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}
	if err := registry.StartServer(3); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("second start should conflict, got %v", err)
	}
}

func TestStatusDegradesWithoutRcon(t *testing.T) {
	installPath := writeFakeExecutable(t)
	cfg := testConfig(5, installPath)
	store := newMockStore(cfg)
	registry := NewRegistry(store, t.TempDir(), time.Second)
	defer registry.StopAll()

	if err := registry.StartServer(5); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}

	status, err := registry.Status(5)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.IsRunning {
		t.Error("status should report running")
	}
	if status.RconStatus == models.RconConnected {
		t.Errorf("rcon status should not be connected, got %q", status.RconStatus)
	}
	if status.PlayerCount != nil {
		t.Errorf("player count should be nil without a session, got %d", *status.PlayerCount)
	}
	if status.CurrentMap.Level != models.Unknown {
		t.Errorf("current map should be the unknown sentinel, got %+v", status.CurrentMap)
	}
}

func TestStatusForStoppedServer(t *testing.T) {
	cfg := testConfig(9, "/nonexistent")
	store := newMockStore(cfg)
	registry := NewRegistry(store, t.TempDir(), time.Second)

	status, err := registry.Status(9)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.IsRunning || status.RconStatus != models.RconDisconnected {
		t.Errorf("unexpected stopped status: %+v", status)
	}
}

func TestProcessExitClearsRegistry(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake executable script requires a unix shell")
	}
	installPath := t.TempDir()
	exe := filepath.Join(installPath, "SquadGame", "Binaries", "Linux", "SquadGameServer")
	if err := os.MkdirAll(filepath.Dir(exe), 0755); err != nil {
		t.Fatal(err)
	}
	// Exits on its own almost immediately.
	if err := os.WriteFile(exe, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(11, installPath)
	store := newMockStore(cfg)
	registry := NewRegistry(store, t.TempDir(), time.Second)

	exited := make(chan int64, 1)
	registry.OnServerExit = func(id int64) { exited <- id }

	if err := registry.StartServer(11); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}

	select {
	case id := <-exited:
		if id != 11 {
			t.Errorf("exit fired for server %d", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for process exit")
	}
	if registry.IsRunning(11) {
		t.Error("registry entry should be cleared after exit")
	}
	if store.runningFlag(11) {
		t.Error("persisted running flag should be false after exit")
	}
}
