package squad

import "testing"

func TestParseBanLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantAdmin string
		wantID    string
		wantExp   int64
		wantNote  string
	}{
		{
			name:      "full line",
			line:      "AdminX Banned:76561198012345678:0 //cheating",
			wantOK:    true,
			wantAdmin: "AdminX",
			wantID:    "76561198012345678",
			wantExp:   0,
			wantNote:  "cheating",
		},
		{
			name:    "no admin prefix",
			line:    "Banned:76561198012345678:1735689600 //teamkilling",
			wantOK:  true,
			wantID:  "76561198012345678",
			wantExp: 1735689600,
		},
		{
			name:      "no comment",
			line:      "ops Banned:0002a10386d9114496bf20d22d3860ba:1700000000",
			wantOK:    true,
			wantAdmin: "ops",
			wantID:    "0002a10386d9114496bf20d22d3860ba",
			wantExp:   1700000000,
		},
		{name: "comment line", line: "// whole line comment", wantOK: false},
		{name: "hash comment", line: "# note", wantOK: false},
		{name: "blank", line: "   ", wantOK: false},
		{name: "garbage", line: "this is not a ban", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := ParseBanLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseBanLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if entry.AdminName != tt.wantAdmin {
				t.Errorf("admin = %q, want %q", entry.AdminName, tt.wantAdmin)
			}
			if entry.BannedID != tt.wantID {
				t.Errorf("id = %q, want %q", entry.BannedID, tt.wantID)
			}
			if entry.Expires != tt.wantExp {
				t.Errorf("expires = %d, want %d", entry.Expires, tt.wantExp)
			}
			if tt.wantNote != "" && entry.Comment != tt.wantNote {
				t.Errorf("comment = %q, want %q", entry.Comment, tt.wantNote)
			}
		})
	}
}

func TestBanLineRoundTrip(t *testing.T) {
	line := FormatBanLine("AdminX", "76561198012345678", 1735689600, "glitching")
	entry, ok := ParseBanLine(line)
	if !ok {
		t.Fatalf("formatted line did not parse: %q", line)
	}
	if entry.AdminName != "AdminX" || entry.BannedID != "76561198012345678" ||
		entry.Expires != 1735689600 || entry.Comment != "glitching" {
		t.Errorf("round trip mismatch: %+v", entry)
	}
}

func TestParseBanList(t *testing.T) {
	raw := `// bans file
AdminX Banned:1100001:0 //cheating

Banned:1100002:1000000000 //old
not a ban line
`
	entries := ParseBanList(raw)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].BannedID != "1100001" || entries[1].BannedID != "1100002" {
		t.Errorf("unexpected ids: %+v", entries)
	}
}
