package squad

import "testing"

const listPlayersOutput = `----- Active Players -----
ID: 0 | Online IDs: EOS: 0002a10386d9114496bf20d22d3860ba steam: 76561198012345678 | Name: Sgt.Pepper | Team ID: 1 | Squad ID: 2 | Is Leader: True | Role: USA_SL_01
ID: 1 | Online IDs: EOS: 0002b20487e0225507c031e33e4971cb steam: 76561198087654321 | Name: lonewolf | Team ID: 2 | Squad ID: N/A | Is Leader: False | Role: RGF_Rifleman_01
----- Recently Disconnected Players [Max of 15] -----
ID: 7 | Online IDs: EOS: 0002c30598f1336618d142f44f5a82dc steam: 76561198011112222 | Since Disconnect: 02m.31s | Name: quitter
`

func TestParsePlayerList(t *testing.T) {
	players, disconnected := ParsePlayerList(listPlayersOutput)

	if len(players) != 2 {
		t.Fatalf("expected 2 active players, got %d", len(players))
	}
	if len(disconnected) != 1 {
		t.Fatalf("expected 1 disconnected player, got %d", len(disconnected))
	}

	first := players[0]
	if first.ID != 0 || first.Name != "Sgt.Pepper" || first.TeamID != 1 {
		t.Errorf("unexpected first player: %+v", first)
	}
	if first.SteamID != "76561198012345678" {
		t.Errorf("unexpected steam id: %s", first.SteamID)
	}
	if first.EOSID != "0002a10386d9114496bf20d22d3860ba" {
		t.Errorf("unexpected EOS id: %s", first.EOSID)
	}
	if first.SquadID == nil || *first.SquadID != 2 {
		t.Errorf("expected squad id 2, got %v", first.SquadID)
	}
	if !first.IsLeader {
		t.Error("expected first player to be squad leader")
	}
	if first.Role != "USA_SL_01" {
		t.Errorf("unexpected role: %s", first.Role)
	}

	second := players[1]
	if second.SquadID != nil {
		t.Errorf("expected nil squad id for unassigned player, got %v", *second.SquadID)
	}
	if second.IsLeader {
		t.Error("expected second player not to be leader")
	}

	gone := disconnected[0]
	if gone.ID != 7 || gone.Name != "quitter" || gone.SinceDisconnect != "02m.31s" {
		t.Errorf("unexpected disconnected player: %+v", gone)
	}
}

func TestParsePlayerListMissingFields(t *testing.T) {
	// No team/squad/role fields: entry survives with zero values
	raw := `----- Active Players -----
ID: 4 | Online IDs: EOS: 0002a10386d9114496bf20d22d3860ba steam: 76561198012345678 | Name: partial`

	players, _ := ParsePlayerList(raw)
	if len(players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(players))
	}
	p := players[0]
	if p.Name != "partial" || p.TeamID != 0 || p.SquadID != nil || p.Role != "" {
		t.Errorf("unexpected degraded entry: %+v", p)
	}
}

func TestParsePlayerListIgnoresJunk(t *testing.T) {
	players, disconnected := ParsePlayerList("some unrelated output\nwithout player lines\n")
	if len(players) != 0 || len(disconnected) != 0 {
		t.Errorf("expected empty rosters, got %d/%d", len(players), len(disconnected))
	}
}

func TestParsePlayerListEmpty(t *testing.T) {
	players, disconnected := ParsePlayerList("")
	if players != nil || disconnected != nil {
		t.Errorf("expected nil rosters for empty input")
	}
}
