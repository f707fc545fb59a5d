package squad

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/models"
)

// banLineRe matches `<adminName> Banned:<id>:<unixTimestamp> //<comment>`.
// The admin name prefix and the trailing comment are both optional.
var banLineRe = regexp.MustCompile(`^(.*?)\s*Banned:([^:\s]+):(\d+)\s*(?://\s*(.*))?$`)

// ParseBanLine parses one line of Bans.cfg. The second return value is false
// for lines that are not ban entries (comments, blanks, garbage).
func ParseBanLine(line string) (models.BanEntry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
		return models.BanEntry{}, false
	}
	m := banLineRe.FindStringSubmatch(trimmed)
	if m == nil {
		return models.BanEntry{}, false
	}
	expires, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return models.BanEntry{}, false
	}
	return models.BanEntry{
		OriginalLine: line,
		AdminName:    strings.TrimSpace(m[1]),
		BannedID:     m[2],
		Expires:      expires,
		Comment:      strings.TrimSpace(m[4]),
	}, true
}

// FormatBanLine renders a ban entry in the Bans.cfg line format.
func FormatBanLine(adminName, bannedID string, expires int64, comment string) string {
	var b strings.Builder
	if strings.TrimSpace(adminName) != "" {
		b.WriteString(strings.TrimSpace(adminName))
		b.WriteString(" ")
	}
	b.WriteString("Banned:")
	b.WriteString(bannedID)
	b.WriteString(":")
	b.WriteString(strconv.FormatInt(expires, 10))
	if strings.TrimSpace(comment) != "" {
		b.WriteString(" //")
		b.WriteString(strings.TrimSpace(comment))
	}
	return b.String()
}

// ParseBanList parses every ban entry of a Bans.cfg body, skipping
// non-matching lines.
func ParseBanList(raw string) []models.BanEntry {
	var entries []models.BanEntry
	for _, line := range strings.Split(raw, "\n") {
		if entry, ok := ParseBanLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
