package gamefiles

import (
	"strings"
	"time"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
	"github.com/squadmgr/squad-server-manager/internal/squad"
)

// ListBans parses Bans.cfg. A missing file is an empty list.
func ListBans(installPath string) ([]models.BanEntry, error) {
	lines, err := readLines(BansPath(installPath))
	if err != nil {
		return nil, err
	}
	var entries []models.BanEntry
	for _, line := range lines {
		if entry, ok := squad.ParseBanLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// AddBan appends a new ban line. It refuses with a conflict when an
// unexpired entry for the same identity already exists; expired entries do
// not block re-adding and are left in place.
func AddBan(installPath string, req models.BanRequest, now time.Time) (models.BanEntry, error) {
	if strings.TrimSpace(req.BannedID) == "" {
		return models.BanEntry{}, errs.Wrap(errs.ErrValidation, "banned id is required")
	}

	path := BansPath(installPath)
	lines, err := readLines(path)
	if err != nil {
		return models.BanEntry{}, err
	}

	for _, line := range lines {
		entry, ok := squad.ParseBanLine(line)
		if !ok {
			continue
		}
		if entry.BannedID == req.BannedID && entry.Active(now) {
			return models.BanEntry{}, errs.Wrap(errs.ErrConflict, "id %s already has an active ban", req.BannedID)
		}
	}

	newLine := squad.FormatBanLine(req.AdminName, req.BannedID, req.Expires, req.Comment)
	lines = append(lines, newLine)
	if err := writeLines(path, lines); err != nil {
		return models.BanEntry{}, err
	}

	entry, _ := squad.ParseBanLine(newLine)
	return entry, nil
}

// EditBan replaces the ban matching originalLine. The banned identity is
// re-derived from the matched line itself, so a stale id in the request can
// never redirect the edit to a different entry.
func EditBan(installPath, originalLine string, expires int64, comment string) (models.BanEntry, error) {
	path := BansPath(installPath)
	lines, err := readLines(path)
	if err != nil {
		return models.BanEntry{}, err
	}

	target := strings.TrimSpace(originalLine)
	for i, line := range lines {
		if strings.TrimSpace(line) != target {
			continue
		}
		existing, ok := squad.ParseBanLine(line)
		if !ok {
			return models.BanEntry{}, errs.Wrap(errs.ErrValidation, "matched line is not a ban entry")
		}
		newLine := squad.FormatBanLine(existing.AdminName, existing.BannedID, expires, comment)
		lines[i] = newLine
		if err := writeLines(path, lines); err != nil {
			return models.BanEntry{}, err
		}
		entry, _ := squad.ParseBanLine(newLine)
		return entry, nil
	}

	return models.BanEntry{}, errs.Wrap(errs.ErrNotFound, "ban entry not found")
}

// RemoveBan drops every line whose trimmed text equals originalLine.
func RemoveBan(installPath, originalLine string) error {
	path := BansPath(installPath)
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	target := strings.TrimSpace(originalLine)
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != target {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(lines) {
		return nil
	}
	return writeLines(path, kept)
}
