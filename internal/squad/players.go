// Package squad parses the free-text command output of the Squad dedicated
// server's RCON console into structured records. The text format is not a
// versioned contract, so every field is matched independently and a missing
// field degrades the entry instead of dropping it.
package squad

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/models"
)

const (
	activePlayersHeader       = "----- Active Players -----"
	disconnectedPlayersHeader = "----- Recently Disconnected Players"
)

var (
	playerIDRe   = regexp.MustCompile(`ID:\s*(\d+)`)
	eosIDRe      = regexp.MustCompile(`EOS:\s*([0-9a-fA-F]{32})`)
	steamIDRe    = regexp.MustCompile(`steam:\s*(\d{17})`)
	nameRe       = regexp.MustCompile(`\|\s*Name:\s*([^|]+?)\s*(?:\||$)`)
	teamIDRe     = regexp.MustCompile(`Team ID:\s*(\d+)`)
	squadIDRe    = regexp.MustCompile(`Squad ID:\s*(\d+|N/A)`)
	isLeaderRe   = regexp.MustCompile(`Is Leader:\s*(True|False)`)
	roleRe       = regexp.MustCompile(`Role:\s*([^|]+?)\s*(?:\||$)`)
	sinceDiscoRe = regexp.MustCompile(`Since Disconnect:\s*([^|]+?)\s*(?:\||$)`)
)

// ParsePlayerList splits a ListPlayers response into the active and
// recently-disconnected rosters. Lines that carry no player id are skipped;
// any other missing field leaves its zero value on the entry.
func ParsePlayerList(raw string) ([]models.Player, []models.DisconnectedPlayer) {
	var players []models.Player
	var disconnected []models.DisconnectedPlayer

	inDisconnected := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, disconnectedPlayersHeader) {
			inDisconnected = true
			continue
		}
		if strings.Contains(line, activePlayersHeader) {
			inDisconnected = false
			continue
		}

		id, ok := matchInt(playerIDRe, line)
		if !ok {
			continue
		}

		if inDisconnected {
			disconnected = append(disconnected, models.DisconnectedPlayer{
				ID:              id,
				EOSID:           matchString(eosIDRe, line),
				SteamID:         matchString(steamIDRe, line),
				Name:            matchString(nameRe, line),
				SinceDisconnect: matchString(sinceDiscoRe, line),
			})
			continue
		}

		player := models.Player{
			ID:      id,
			EOSID:   matchString(eosIDRe, line),
			SteamID: matchString(steamIDRe, line),
			Name:    matchString(nameRe, line),
			Role:    matchString(roleRe, line),
		}
		if team, ok := matchInt(teamIDRe, line); ok {
			player.TeamID = team
		}
		if m := squadIDRe.FindStringSubmatch(line); m != nil && m[1] != "N/A" {
			if n, err := strconv.Atoi(m[1]); err == nil {
				player.SquadID = &n
			}
		}
		player.IsLeader = matchString(isLeaderRe, line) == "True"
		players = append(players, player)
	}

	return players, disconnected
}

func matchString(re *regexp.Regexp, line string) string {
	if m := re.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func matchInt(re *regexp.Regexp, line string) (int, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
