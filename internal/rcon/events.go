package rcon

import (
	"regexp"
	"strconv"
)

// ChatMessage is a player chat line pushed by the server.
type ChatMessage struct {
	Channel string
	EOSID   string
	SteamID string
	Name    string
	Message string
}

// PlayerWarned is an admin warning delivered to a player.
type PlayerWarned struct {
	Name    string
	Message string
}

// PlayerKicked is a kick notification.
type PlayerKicked struct {
	PlayerID string
	EOSID    string
	SteamID  string
	Name     string
}

// PlayerBanned is a ban notification.
type PlayerBanned struct {
	PlayerID string
	SteamID  string
	Name     string
	Interval string
}

// SquadCreated is emitted when a player creates a squad.
type SquadCreated struct {
	Name      string
	EOSID     string
	SteamID   string
	SquadID   int
	SquadName string
	TeamName  string
}

// AdminCamera is emitted when an admin enters or leaves the admin camera.
type AdminCamera struct {
	EOSID     string
	SteamID   string
	Name      string
	Possessed bool
}

// EventHandlers receives protocol events for the lifetime of one session.
// Nil entries are skipped. OnClosed fires at most once, and only for closes
// the session owner did not initiate itself.
type EventHandlers struct {
	OnChat         func(ChatMessage)
	OnWarn         func(PlayerWarned)
	OnKick         func(PlayerKicked)
	OnBan          func(PlayerBanned)
	OnSquadCreated func(SquadCreated)
	OnAdminCamera  func(AdminCamera)
	OnClosed       func(err error)
}

var (
	chatRe = regexp.MustCompile(`^\[(ChatAll|ChatTeam|ChatSquad|ChatAdmin)\] \[Online IDs:EOS: ([0-9a-f]{32})(?: steam: (\d{17}))?\] (.+?) : (.*)$`)
	warnRe = regexp.MustCompile(`^Remote admin has warned player (.+?)\. Message was "(.*)"\.?$`)
	kickRe = regexp.MustCompile(`^Kicked player (\d+)\. \[Online IDs= EOS: ([0-9a-f]{32})(?: steam: (\d{17}))?\] (.*)$`)
	banRe  = regexp.MustCompile(`^Banned player (\d+)\. \[steamid=(.*?)\] (.*) for interval (.*)$`)
	sqadRe = regexp.MustCompile(`^(.+?) \(Online IDs: EOS: ([0-9a-f]{32})(?: steam: (\d{17}))?\) has created Squad (\d+) \(Squad Name: (.+?)\) on (.+)$`)
	acamRe = regexp.MustCompile(`^\[Online Ids:EOS: ([0-9a-f]{32})(?: steam: (\d{17}))?\] (.+?) has (possessed|unpossessed) admin camera\.?$`)
)

// ParseEvent decodes one pushed event body. The second return value is false
// when the body matches no known format.
func ParseEvent(body string) (interface{}, bool) {
	if m := chatRe.FindStringSubmatch(body); m != nil {
		return ChatMessage{Channel: m[1], EOSID: m[2], SteamID: m[3], Name: m[4], Message: m[5]}, true
	}
	if m := warnRe.FindStringSubmatch(body); m != nil {
		return PlayerWarned{Name: m[1], Message: m[2]}, true
	}
	if m := kickRe.FindStringSubmatch(body); m != nil {
		return PlayerKicked{PlayerID: m[1], EOSID: m[2], SteamID: m[3], Name: m[4]}, true
	}
	if m := banRe.FindStringSubmatch(body); m != nil {
		return PlayerBanned{PlayerID: m[1], SteamID: m[2], Name: m[3], Interval: m[4]}, true
	}
	if m := sqadRe.FindStringSubmatch(body); m != nil {
		squadID, _ := strconv.Atoi(m[4])
		return SquadCreated{Name: m[1], EOSID: m[2], SteamID: m[3], SquadID: squadID, SquadName: m[5], TeamName: m[6]}, true
	}
	if m := acamRe.FindStringSubmatch(body); m != nil {
		return AdminCamera{EOSID: m[1], SteamID: m[2], Name: m[3], Possessed: m[4] == "possessed"}, true
	}
	return nil, false
}

func dispatchEvent(h EventHandlers, body string) bool {
	event, ok := ParseEvent(body)
	if !ok {
		return false
	}
	switch e := event.(type) {
	case ChatMessage:
		if h.OnChat != nil {
			h.OnChat(e)
		}
	case PlayerWarned:
		if h.OnWarn != nil {
			h.OnWarn(e)
		}
	case PlayerKicked:
		if h.OnKick != nil {
			h.OnKick(e)
		}
	case PlayerBanned:
		if h.OnBan != nil {
			h.OnBan(e)
		}
	case SquadCreated:
		if h.OnSquadCreated != nil {
			h.OnSquadCreated(e)
		}
	case AdminCamera:
		if h.OnAdminCamera != nil {
			h.OnAdminCamera(e)
		}
	}
	return true
}
