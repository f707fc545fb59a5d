//go:build !windows

package supervisor

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

// writeStubbornExecutable lays out an install directory whose server binary
// ignores SIGTERM.
func writeStubbornExecutable(t *testing.T) string {
	t.Helper()
	installPath := t.TempDir()
	exe := filepath.Join(installPath, "SquadGame", "Binaries", "Linux", "SquadGameServer")
	if err := os.MkdirAll(filepath.Dir(exe), 0755); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\ntrap '' TERM\nwhile true; do sleep 1; done\n"
	if err := os.WriteFile(exe, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return installPath
}

func TestStopSurfacesProcessIgnoringSigterm(t *testing.T) {
	installPath := writeStubbornExecutable(t)
	cfg := testConfig(21, installPath)
	store := newMockStore(cfg)
	registry := NewRegistry(store, t.TempDir(), time.Second)
	registry.StopTimeout = 200 * time.Millisecond

	if err := registry.StartServer(21); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}
	registry.mu.Lock()
	sup := registry.supervisors[21]
	registry.mu.Unlock()
	pid := sup.PID()
	t.Cleanup(func() {
		syscall.Kill(-pid, syscall.SIGKILL)
	})

	err := registry.StopServer(21)
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict for a process ignoring the stop signal, got %v", err)
	}

	if err := syscall.Kill(pid, 0); err != nil {
		t.Fatalf("process should still be alive after the failed stop: %v", err)
	}
	if !registry.IsRunning(21) {
		t.Error("registry should keep reporting the server running")
	}
	if !store.runningFlag(21) {
		t.Error("persisted running flag should remain set")
	}
	status, err := registry.Status(21)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.IsRunning {
		t.Error("status should report the process still running")
	}
}
