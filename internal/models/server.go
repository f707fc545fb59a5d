package models

import "time"

// ServerConfig is the persisted configuration record for one managed Squad
// server. IsRunning is a supervisor-authoritative mirror; liveness is always
// re-derived from the in-memory registry, never from this flag.
type ServerConfig struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" binding:"required"`
	InstallPath  string    `json:"install_path" binding:"required"`
	GamePort     int       `json:"game_port"`
	QueryPort    int       `json:"query_port"`
	RconPort     int       `json:"rcon_port"`
	BeaconPort   int       `json:"beacon_port"`
	RconPassword string    `json:"rcon_password"`
	ExtraArgs    string    `json:"extra_args"`
	IsRunning    bool      `json:"is_running"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RCON connection states as reported by server status.
const (
	RconDisconnected = "Disconnected"
	RconConnecting   = "Connecting"
	RconConnected    = "Connected"
	RconRetrying     = "Disconnected (retrying)"
)

// ServerStatus is the aggregated live view of one server. Fields that depend
// on a live RCON session are nil or carry the Unknown sentinel when the
// session is down; a degraded subsystem never fails the whole status call.
type ServerStatus struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	IsRunning    bool                 `json:"is_running"`
	PID          int                  `json:"pid,omitempty"`
	RconStatus   string               `json:"rcon_status"`
	PlayerCount  *int                 `json:"player_count"`
	Players      []Player             `json:"players,omitempty"`
	Disconnected []DisconnectedPlayer `json:"disconnected_players,omitempty"`
	CurrentMap   MapInfo              `json:"current_map"`
	NextMap      MapInfo              `json:"next_map"`
}

// CommandRequest is a raw RCON command submitted through the API.
type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// CommandResponse carries the verbatim RCON response text.
type CommandResponse struct {
	Output string `json:"output"`
}
