package models

// AdminGroup is a `Group=<name>:<perm,...>` line of Admins.cfg. Group names
// are unique case-insensitively.
type AdminGroup struct {
	Name         string   `json:"name"`
	Permissions  []string `json:"permissions"`
	OriginalLine string   `json:"original_line"`
}

// AdminEntry is an `Admin=<id>:<group> //<comment>` line of Admins.cfg.
type AdminEntry struct {
	ID           string `json:"id"`
	GroupName    string `json:"group_name"`
	Comment      string `json:"comment"`
	OriginalLine string `json:"original_line"`
}

// AdminConfig is the parsed view of Admins.cfg. OtherLines holds comments and
// blank lines verbatim so the file can round-trip without losing anything.
type AdminConfig struct {
	Groups     []AdminGroup `json:"groups"`
	Admins     []AdminEntry `json:"admins"`
	OtherLines []string     `json:"other_lines"`
}

// AdminGroupRequest adds a group.
type AdminGroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// AdminRequest adds or removes an admin assignment.
type AdminRequest struct {
	ID           string `json:"id"`
	GroupName    string `json:"group_name"`
	Comment      string `json:"comment"`
	OriginalLine string `json:"original_line"` // remove only
}
