package supervisor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

// chatLineRe captures the leading bracketed timestamp of a log line.
var chatLineRe = regexp.MustCompile(`^\[([^\]]+)\] `)

// ChatLog is the append-only per-server chat/event log. Appends and prunes
// synchronize on a mutex because the pruning sweep runs on the cron goroutine
// while appends come from RCON event dispatch.
type ChatLog struct {
	mu   sync.Mutex
	path string
}

// NewChatLog returns the log for one server id inside the chat log directory.
func NewChatLog(dir string, serverID int64) *ChatLog {
	return &ChatLog{path: filepath.Join(dir, fmt.Sprintf("server-%d.log", serverID))}
}

// Append writes one timestamped line.
func (c *ChatLog) Append(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return errs.Wrap(errs.ErrFileIO, "create %s: %v", filepath.Dir(c.path), err)
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errs.Wrap(errs.ErrFileIO, "open %s: %v", c.path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", time.Now().UTC().Format(time.RFC3339), message)
	if _, err := f.WriteString(line); err != nil {
		return errs.Wrap(errs.ErrFileIO, "append %s: %v", c.path, err)
	}
	return nil
}

// Prune drops lines older than the retention window. Lines whose timestamp
// does not parse are kept.
func (c *ChatLog) Prune(retention time.Duration, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pruneFile(c.path, retention, now)
}

func pruneFile(path string, retention time.Duration, now time.Time) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errs.Wrap(errs.ErrFileIO, "read %s: %v", path, err)
	}

	cutoff := now.Add(-retention)
	var kept []string
	dropped := 0
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		if m := chatLineRe.FindStringSubmatch(line); m != nil {
			if ts, err := time.Parse(time.RFC3339, m[1]); err == nil && ts.Before(cutoff) {
				dropped++
				continue
			}
		}
		kept = append(kept, line)
	}
	if dropped == 0 {
		return nil
	}

	content := ""
	if len(kept) > 0 {
		content = strings.Join(kept, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errs.Wrap(errs.ErrFileIO, "write %s: %v", path, err)
	}
	return nil
}

// PruneChatLogs sweeps every server log in the directory. Called from the
// periodic cron job; per-file failures are logged and do not stop the sweep.
func PruneChatLogs(dir string, retention time.Duration) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[ChatLog] Failed to read %s: %v", dir, err)
		}
		return
	}
	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := pruneFile(path, retention, now); err != nil {
			log.Printf("[ChatLog] Failed to prune %s: %v", path, err)
		}
	}
}
