package gamefiles

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

const defaultRconConfig = "Password=\nPort=21114\n"

var (
	rconPasswordLineRe = regexp.MustCompile(`(?m)^Password=.*$`)
	rconPortLineRe     = regexp.MustCompile(`(?m)^Port=.*$`)
)

// RconCredentials are the parsed key=value pairs of Rcon.cfg.
type RconCredentials struct {
	Password string `json:"password"`
	Port     int    `json:"port"`
}

// ReadRconCredentials parses Rcon.cfg. A missing file yields zero values.
func ReadRconCredentials(installPath string) (RconCredentials, error) {
	lines, err := readLines(RconConfigPath(installPath))
	if err != nil {
		return RconCredentials{}, err
	}

	var creds RconCredentials
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Password="):
			creds.Password = strings.TrimPrefix(trimmed, "Password=")
		case strings.HasPrefix(trimmed, "Port="):
			if port, err := strconv.Atoi(strings.TrimPrefix(trimmed, "Port=")); err == nil {
				creds.Port = port
			}
		}
	}
	return creds, nil
}

// WriteRconCredentials rewrites only the keys being changed, preserving every
// other line of the file. A missing file is created with defaults first; a
// key missing from the file is appended.
func WriteRconCredentials(installPath string, password *string, port *int) error {
	path := RconConfigPath(installPath)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data = []byte(defaultRconConfig)
	} else if err != nil {
		return errs.Wrap(errs.ErrFileIO, "read %s: %v", path, err)
	}

	content := string(data)
	if password != nil {
		content = replaceOrAppend(content, rconPasswordLineRe, "Password="+*password)
	}
	if port != nil {
		content = replaceOrAppend(content, rconPortLineRe, fmt.Sprintf("Port=%d", *port))
	}

	return writeLines(path, splitLines(content))
}

func replaceOrAppend(content string, lineRe *regexp.Regexp, replacement string) string {
	if lineRe.MatchString(content) {
		return lineRe.ReplaceAllString(content, replacement)
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + replacement + "\n"
}
