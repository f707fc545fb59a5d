package rcon

import "testing"

func TestParseEventChat(t *testing.T) {
	body := "[ChatAll] [Online IDs:EOS: 0002a10386d9114496bf20d22d3860ba steam: 76561198012345678] Sgt.Pepper : need a medic at bravo"
	event, ok := ParseEvent(body)
	if !ok {
		t.Fatal("chat event did not parse")
	}
	chat, ok := event.(ChatMessage)
	if !ok {
		t.Fatalf("expected ChatMessage, got %T", event)
	}
	if chat.Channel != "ChatAll" || chat.Name != "Sgt.Pepper" {
		t.Errorf("unexpected chat: %+v", chat)
	}
	if chat.SteamID != "76561198012345678" || chat.EOSID != "0002a10386d9114496bf20d22d3860ba" {
		t.Errorf("unexpected ids: %+v", chat)
	}
	if chat.Message != "need a medic at bravo" {
		t.Errorf("unexpected message: %q", chat.Message)
	}
}

func TestParseEventChatWithoutSteamID(t *testing.T) {
	body := "[ChatTeam] [Online IDs:EOS: 0002a10386d9114496bf20d22d3860ba] epicplayer : on my way"
	event, ok := ParseEvent(body)
	if !ok {
		t.Fatal("chat event did not parse")
	}
	chat := event.(ChatMessage)
	if chat.SteamID != "" || chat.Channel != "ChatTeam" {
		t.Errorf("unexpected chat: %+v", chat)
	}
}

func TestParseEventWarn(t *testing.T) {
	event, ok := ParseEvent(`Remote admin has warned player lonewolf. Message was "stop teamkilling".`)
	if !ok {
		t.Fatal("warn event did not parse")
	}
	warn := event.(PlayerWarned)
	if warn.Name != "lonewolf" || warn.Message != "stop teamkilling" {
		t.Errorf("unexpected warn: %+v", warn)
	}
}

func TestParseEventKick(t *testing.T) {
	event, ok := ParseEvent("Kicked player 5. [Online IDs= EOS: 0002a10386d9114496bf20d22d3860ba steam: 76561198012345678] troll")
	if !ok {
		t.Fatal("kick event did not parse")
	}
	kick := event.(PlayerKicked)
	if kick.PlayerID != "5" || kick.Name != "troll" {
		t.Errorf("unexpected kick: %+v", kick)
	}
}

func TestParseEventBan(t *testing.T) {
	event, ok := ParseEvent("Banned player 3. [steamid=76561198012345678] cheater for interval 0")
	if !ok {
		t.Fatal("ban event did not parse")
	}
	ban := event.(PlayerBanned)
	if ban.PlayerID != "3" || ban.SteamID != "76561198012345678" || ban.Interval != "0" {
		t.Errorf("unexpected ban: %+v", ban)
	}
}

func TestParseEventSquadCreated(t *testing.T) {
	body := "Sgt.Pepper (Online IDs: EOS: 0002a10386d9114496bf20d22d3860ba steam: 76561198012345678) has created Squad 3 (Squad Name: ARMOR) on Team 1"
	event, ok := ParseEvent(body)
	if !ok {
		t.Fatal("squad created event did not parse")
	}
	sc := event.(SquadCreated)
	if sc.SquadID != 3 || sc.SquadName != "ARMOR" || sc.TeamName != "Team 1" {
		t.Errorf("unexpected squad created: %+v", sc)
	}
}

func TestParseEventAdminCamera(t *testing.T) {
	event, ok := ParseEvent("[Online Ids:EOS: 0002a10386d9114496bf20d22d3860ba steam: 76561198012345678] overseer has possessed admin camera.")
	if !ok {
		t.Fatal("admin camera event did not parse")
	}
	cam := event.(AdminCamera)
	if !cam.Possessed || cam.Name != "overseer" {
		t.Errorf("unexpected camera event: %+v", cam)
	}

	event, ok = ParseEvent("[Online Ids:EOS: 0002a10386d9114496bf20d22d3860ba] overseer has unpossessed admin camera.")
	if !ok {
		t.Fatal("unpossess event did not parse")
	}
	if event.(AdminCamera).Possessed {
		t.Error("expected Possessed=false")
	}
}

func TestParseEventUnknown(t *testing.T) {
	if _, ok := ParseEvent("some console noise"); ok {
		t.Error("unknown body should not parse")
	}
}

func TestDispatchEvent(t *testing.T) {
	var got ChatMessage
	h := EventHandlers{OnChat: func(c ChatMessage) { got = c }}

	body := "[ChatAdmin] [Online IDs:EOS: 0002a10386d9114496bf20d22d3860ba steam: 76561198012345678] mod : restarting soon"
	if !dispatchEvent(h, body) {
		t.Fatal("dispatch failed")
	}
	if got.Message != "restarting soon" {
		t.Errorf("handler not invoked: %+v", got)
	}

	// nil handler must not panic
	if !dispatchEvent(EventHandlers{}, body) {
		t.Error("dispatch with nil handlers should still report a match")
	}
}
