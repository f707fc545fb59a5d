package gamefiles

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

var allowedConfigExtensions = map[string]bool{
	".cfg": true,
	".ini": true,
}

// ValidateConfigName rejects filenames outside the ServerConfig directory's
// flat namespace: wrong extension, path separators, traversal sequences.
func ValidateConfigName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.Wrap(errs.ErrValidation, "config filename is empty")
	}
	if strings.Contains(name, "..") {
		return errs.Wrap(errs.ErrValidation, "config filename must not contain parent directory references")
	}
	if strings.ContainsAny(name, "/\\") {
		return errs.Wrap(errs.ErrValidation, "config filename must not contain path separators")
	}
	if !allowedConfigExtensions[strings.ToLower(filepath.Ext(name))] {
		return errs.Wrap(errs.ErrValidation, "config filename must end in .cfg or .ini")
	}
	return nil
}

// ReadConfigFile returns the raw content of a named file under ServerConfig.
func ReadConfigFile(installPath, name string) (string, error) {
	if err := ValidateConfigName(name); err != nil {
		return "", err
	}
	path := filepath.Join(ConfigDir(installPath), name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errs.Wrap(errs.ErrNotFound, "config file %s", name)
	}
	if err != nil {
		return "", errs.Wrap(errs.ErrFileIO, "read %s: %v", path, err)
	}
	return string(data), nil
}

// WriteConfigFile overwrites a named file under ServerConfig, taking a
// timestamped backup of the previous content first. Backup failure is logged
// and ignored.
func WriteConfigFile(installPath, name, content string) error {
	if err := ValidateConfigName(name); err != nil {
		return err
	}

	path := filepath.Join(ConfigDir(installPath), name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.Wrap(errs.ErrFileIO, "create %s: %v", filepath.Dir(path), err)
	}

	if previous, err := os.ReadFile(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		if err := os.WriteFile(backupPath, previous, 0644); err != nil {
			log.Printf("[GameFiles] Failed to back up %s: %v", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errs.Wrap(errs.ErrFileIO, "write %s: %v", path, err)
	}
	return nil
}
