package squad

import (
	"regexp"
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/models"
)

var (
	currentMapRe = regexp.MustCompile(`(?m)^Current level is (.+?), layer is (.+?)(?:, factions (.+?))?\s*$`)
	nextMapRe    = regexp.MustCompile(`(?m)^Next level is (.+?), layer is (.+?)(?:, factions (.+?))?\s*$`)
)

// ParseCurrentMap parses a ShowCurrentMap response. Unparsable input yields
// the Unknown sentinel triple, never an error.
func ParseCurrentMap(raw string) models.MapInfo {
	return parseMapLine(currentMapRe, raw)
}

// ParseNextMap parses a ShowNextMap response.
func ParseNextMap(raw string) models.MapInfo {
	return parseMapLine(nextMapRe, raw)
}

func parseMapLine(re *regexp.Regexp, raw string) models.MapInfo {
	m := re.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return models.UnknownMap()
	}
	info := models.MapInfo{
		Level:    strings.TrimSpace(m[1]),
		Layer:    strings.TrimSpace(m[2]),
		Factions: strings.TrimSpace(m[3]),
	}
	if info.Factions == "" {
		info.Factions = models.Unknown
	}
	return info
}
