// Package supervisor owns the lifecycle of managed Squad server processes:
// spawning and monitoring the game executable, maintaining a resilient RCON
// session per server, serializing command execution, and aggregating live
// status. One Supervisor instance exists per running server id; the Registry
// maps ids to instances.
package supervisor

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/gamefiles"
	"github.com/squadmgr/squad-server-manager/internal/models"
)

// Process is one spawned game server process. Exit is reported asynchronously
// through Done; the process outlives neither a Stop call nor (on unix) a
// SIGTERM it chooses to honor.
type Process struct {
	PID int

	cmd     *exec.Cmd
	done    chan struct{}
	exitErr error
}

// Spawn launches the server executable for a config. Stdout and stderr are
// consumed line by line for logging only; the supervisor never parses them
// for control decisions.
func Spawn(cfg models.ServerConfig) (*Process, error) {
	exe := gamefiles.ExecutablePath(cfg.InstallPath)
	if err := checkExecutable(exe); err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, buildArgs(cfg)...)
	cmd.Dir = filepath.Dir(exe)
	cmd.Stdin = nil
	configureSysProc(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errs.Wrap(errs.ErrSpawn, "stdout pipe: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errs.Wrap(errs.ErrSpawn, "stderr pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errs.Wrap(errs.ErrSpawn, "start %s: %v", exe, err)
	}

	p := &Process{
		PID:  cmd.Process.Pid,
		cmd:  cmd,
		done: make(chan struct{}),
	}

	go logOutput(cfg.ID, "stdout", stdout)
	go logOutput(cfg.ID, "stderr", stderr)
	go func() {
		p.exitErr = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

// Done is closed once the OS process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitError returns the wait error after Done is closed.
func (p *Process) ExitError() error {
	return p.exitErr
}

// Stop requests termination. On unix this is a SIGTERM with no SIGKILL
// escalation; a process that ignores it stays alive and keeps reporting as
// running until it actually exits.
func (p *Process) Stop() error {
	return terminate(p.PID)
}

func buildArgs(cfg models.ServerConfig) []string {
	args := []string{
		fmt.Sprintf("Port=%d", cfg.GamePort),
		fmt.Sprintf("QueryPort=%d", cfg.QueryPort),
		fmt.Sprintf("RCONPORT=%d", cfg.RconPort),
		fmt.Sprintf("RCONPASSWORD=%s", cfg.RconPassword),
		fmt.Sprintf("beaconport=%d", cfg.BeaconPort),
		"-log",
	}
	if extra := strings.TrimSpace(cfg.ExtraArgs); extra != "" {
		args = append(args, strings.Fields(extra)...)
	}
	return args
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errs.Wrap(errs.ErrExecutableNotFound, "%s", path)
	}
	if err != nil {
		return errs.Wrap(errs.ErrSpawn, "stat %s: %v", path, err)
	}
	if info.IsDir() || !isExecutable(info) {
		return errs.Wrap(errs.ErrExecutableNotFound, "%s is not executable", path)
	}
	return nil
}

func logOutput(serverID int64, stream string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		log.Printf("[Server %d %s] %s", serverID, stream, scanner.Text())
	}
}
