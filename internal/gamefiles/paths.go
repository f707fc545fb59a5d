// Package gamefiles reads and mutates the Squad dedicated server's on-disk
// configuration under an install path. The filesystem is the source of truth
// for credentials, bans and admins, independent of whether the game process
// is running.
package gamefiles

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

const (
	gameDir        = "SquadGame"
	configDirName  = "ServerConfig"
	executableName = "SquadGameServer"

	rconConfigName = "Rcon.cfg"
	bansFileName   = "Bans.cfg"
	adminsFileName = "Admins.cfg"
)

// ConfigDir returns the ServerConfig directory for an install path.
func ConfigDir(installPath string) string {
	return filepath.Join(installPath, gameDir, configDirName)
}

// ExecutablePath returns the platform-specific server binary path.
func ExecutablePath(installPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(installPath, gameDir, "Binaries", "Win64", executableName+".exe")
	}
	return filepath.Join(installPath, gameDir, "Binaries", "Linux", executableName)
}

// RconConfigPath returns the path of Rcon.cfg.
func RconConfigPath(installPath string) string {
	return filepath.Join(ConfigDir(installPath), rconConfigName)
}

// BansPath returns the path of Bans.cfg.
func BansPath(installPath string) string {
	return filepath.Join(ConfigDir(installPath), bansFileName)
}

// AdminsPath returns the path of Admins.cfg.
func AdminsPath(installPath string) string {
	return filepath.Join(ConfigDir(installPath), adminsFileName)
}

// readLines loads a file as lines without the trailing newline artifact. A
// missing file yields an empty slice.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrFileIO, "read %s: %v", path, err)
	}
	lines := splitLines(string(data))
	return lines, nil
}

// writeLines writes lines back with a trailing newline, creating parent
// directories as needed.
func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.Wrap(errs.ErrFileIO, "create %s: %v", filepath.Dir(path), err)
	}
	content := ""
	if len(lines) > 0 {
		content = joinLines(lines) + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errs.Wrap(errs.ErrFileIO, "write %s: %v", path, err)
	}
	return nil
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	// drop the empty pseudo-line a trailing newline produces
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
