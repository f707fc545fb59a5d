package squad

import (
	"regexp"
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/models"
)

var (
	groupLineRe = regexp.MustCompile(`^Group=([^:]+):(.*)$`)
	adminLineRe = regexp.MustCompile(`^Admin=([^:\s]+):([^/]+?)\s*(?://\s*(.*))?$`)
)

// ParseAdminConfig parses an Admins.cfg body. Comment lines (`//`, `#`) and
// blank lines go to OtherLines verbatim so the file round-trips.
func ParseAdminConfig(raw string) models.AdminConfig {
	var cfg models.AdminConfig
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if g, ok := ParseGroupLine(trimmed); ok {
			g.OriginalLine = line
			cfg.Groups = append(cfg.Groups, g)
			continue
		}
		if a, ok := ParseAdminLine(trimmed); ok {
			a.OriginalLine = line
			cfg.Admins = append(cfg.Admins, a)
			continue
		}
		cfg.OtherLines = append(cfg.OtherLines, line)
	}

	// A trailing newline produces one empty pseudo-line; drop it
	if n := len(cfg.OtherLines); n > 0 && cfg.OtherLines[n-1] == "" {
		cfg.OtherLines = cfg.OtherLines[:n-1]
	}
	return cfg
}

// ParseGroupLine parses a `Group=<name>:<perm1>,<perm2>,...` line.
func ParseGroupLine(line string) (models.AdminGroup, bool) {
	if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
		return models.AdminGroup{}, false
	}
	m := groupLineRe.FindStringSubmatch(line)
	if m == nil {
		return models.AdminGroup{}, false
	}
	group := models.AdminGroup{Name: strings.TrimSpace(m[1])}
	for _, perm := range strings.Split(m[2], ",") {
		perm = strings.TrimSpace(perm)
		if perm != "" {
			group.Permissions = append(group.Permissions, perm)
		}
	}
	return group, true
}

// ParseAdminLine parses an `Admin=<id>:<groupName> //<comment>` line.
func ParseAdminLine(line string) (models.AdminEntry, bool) {
	if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
		return models.AdminEntry{}, false
	}
	m := adminLineRe.FindStringSubmatch(line)
	if m == nil {
		return models.AdminEntry{}, false
	}
	return models.AdminEntry{
		ID:        strings.TrimSpace(m[1]),
		GroupName: strings.TrimSpace(m[2]),
		Comment:   strings.TrimSpace(m[3]),
	}, true
}

// FormatGroupLine renders a group in the Admins.cfg line format.
func FormatGroupLine(name string, permissions []string) string {
	return "Group=" + strings.TrimSpace(name) + ":" + strings.Join(permissions, ",")
}

// FormatAdminLine renders an admin assignment in the Admins.cfg line format.
func FormatAdminLine(id, groupName, comment string) string {
	line := "Admin=" + strings.TrimSpace(id) + ":" + strings.TrimSpace(groupName)
	if strings.TrimSpace(comment) != "" {
		line += " //" + strings.TrimSpace(comment)
	}
	return line
}
