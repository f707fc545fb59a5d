//go:build !windows

package supervisor

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

// configureSysProc detaches the child into its own process group so signals
// aimed at the manager do not reach the game server.
func configureSysProc(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func isExecutable(info os.FileInfo) bool {
	return info.Mode().Perm()&0111 != 0
}

func terminate(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return errs.Wrap(errs.ErrSpawn, "signal pid %d: %v", pid, err)
	}
	return nil
}
