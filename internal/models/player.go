package models

// Unknown is the sentinel used when a status field could not be parsed from
// the RCON response text.
const Unknown = "Unknown"

// Player is one entry of the active roster section of a ListPlayers response.
type Player struct {
	ID       int    `json:"id"`
	EOSID    string `json:"eos_id"`
	SteamID  string `json:"steam_id"`
	Name     string `json:"name"`
	TeamID   int    `json:"team_id"`
	SquadID  *int   `json:"squad_id"` // nil = not in a squad
	IsLeader bool   `json:"is_leader"`
	Role     string `json:"role"`
}

// DisconnectedPlayer is one entry of the recently-disconnected roster section.
type DisconnectedPlayer struct {
	ID              int    `json:"id"`
	EOSID           string `json:"eos_id"`
	SteamID         string `json:"steam_id"`
	Name            string `json:"name"`
	SinceDisconnect string `json:"since_disconnect"`
}

// MapInfo is the level/layer/factions triple reported by ShowCurrentMap and
// ShowNextMap.
type MapInfo struct {
	Level    string `json:"level"`
	Layer    string `json:"layer"`
	Factions string `json:"factions"`
}

// UnknownMap is the default when a map query failed or did not parse.
func UnknownMap() MapInfo {
	return MapInfo{Level: Unknown, Layer: Unknown, Factions: Unknown}
}
