package models

import "time"

// BanEntry is one parsed line of Bans.cfg. OriginalLine is the exact raw text
// of the line and is the identity key for edits and removals; callers must
// re-fetch the list before issuing a second edit against stale lines.
type BanEntry struct {
	OriginalLine string `json:"original_line"`
	BannedID     string `json:"banned_id"`
	Expires      int64  `json:"expires"` // unix seconds, 0 = permanent
	AdminName    string `json:"admin_name"`
	Comment      string `json:"comment"`
}

// Active reports whether the ban blocks re-adding the same identity:
// permanent (0) or not yet expired.
func (b BanEntry) Active(now time.Time) bool {
	return b.Expires == 0 || b.Expires > now.Unix()
}

// BanRequest is the payload for adding or editing a ban.
type BanRequest struct {
	BannedID     string `json:"banned_id"`
	Expires      int64  `json:"expires"`
	AdminName    string `json:"admin_name"`
	Comment      string `json:"comment"`
	OriginalLine string `json:"original_line"` // edit/remove only
}
