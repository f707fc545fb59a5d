//go:build windows

package supervisor

import (
	"os"
	"os/exec"
	"strconv"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

func configureSysProc(cmd *exec.Cmd) {}

func isExecutable(info os.FileInfo) bool {
	return true
}

// terminate kills the whole process tree; the Unreal launcher spawns the
// actual game server as a child.
func terminate(pid int) error {
	if err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run(); err != nil {
		return errs.Wrap(errs.ErrSpawn, "taskkill pid %d: %v", pid, err)
	}
	return nil
}
