package gamefiles

import (
	"strings"

	"github.com/squadmgr/squad-server-manager/internal/errs"
	"github.com/squadmgr/squad-server-manager/internal/models"
	"github.com/squadmgr/squad-server-manager/internal/squad"
)

// ReadAdmins parses Admins.cfg. A missing file is an empty config.
func ReadAdmins(installPath string) (models.AdminConfig, error) {
	lines, err := readLines(AdminsPath(installPath))
	if err != nil {
		return models.AdminConfig{}, err
	}
	return squad.ParseAdminConfig(joinLines(lines)), nil
}

// AddAdminGroup inserts a new group line. Group names are unique
// case-insensitively.
func AddAdminGroup(installPath, name string, permissions []string) error {
	if strings.TrimSpace(name) == "" {
		return errs.Wrap(errs.ErrValidation, "group name is required")
	}

	path := AdminsPath(installPath)
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if group, ok := squad.ParseGroupLine(strings.TrimSpace(line)); ok {
			if strings.EqualFold(group.Name, name) {
				return errs.Wrap(errs.ErrConflict, "group %s already exists", name)
			}
		}
	}

	return writeLines(path, insertBeforeAdmins(lines, squad.FormatGroupLine(name, permissions)))
}

// DeleteAdminGroup removes a group line and cascades to every admin
// assignment referencing the group, matching case-insensitively.
func DeleteAdminGroup(installPath, name string) error {
	path := AdminsPath(installPath)
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	found := false
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if group, ok := squad.ParseGroupLine(trimmed); ok && strings.EqualFold(group.Name, name) {
			found = true
			continue
		}
		if admin, ok := squad.ParseAdminLine(trimmed); ok && strings.EqualFold(admin.GroupName, name) {
			continue
		}
		kept = append(kept, line)
	}

	if !found {
		return errs.Wrap(errs.ErrNotFound, "group %s", name)
	}
	return writeLines(path, kept)
}

// AddAdmin inserts a new admin assignment line. The referenced group must
// exist.
func AddAdmin(installPath, id, groupName, comment string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(groupName) == "" {
		return errs.Wrap(errs.ErrValidation, "admin id and group name are required")
	}

	path := AdminsPath(installPath)
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	groupExists := false
	for _, line := range lines {
		if group, ok := squad.ParseGroupLine(strings.TrimSpace(line)); ok && strings.EqualFold(group.Name, groupName) {
			groupExists = true
			break
		}
	}
	if !groupExists {
		return errs.Wrap(errs.ErrValidation, "group %s does not exist", groupName)
	}

	return writeLines(path, insertBeforeAdmins(lines, squad.FormatAdminLine(id, groupName, comment)))
}

// RemoveAdmin drops every line whose trimmed text equals originalLine.
func RemoveAdmin(installPath, originalLine string) error {
	path := AdminsPath(installPath)
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

// insertBeforeAdmins places a new line immediately before the first admin
// assignment so groups and admins stay visually grouped, or at end-of-file
// (separated by a blank line) when no admin lines exist yet.
func insertBeforeAdmins(lines []string, newLine string) []string {
	for i, line := range lines {
		if _, ok := squad.ParseAdminLine(strings.TrimSpace(line)); ok {
			result := make([]string, 0, len(lines)+1)
			result = append(result, lines[:i]...)
			result = append(result, newLine)
			result = append(result, lines[i:]...)
			return result
		}
	}

	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
		lines = append(lines, "")
	}
	return append(lines, newLine)
}
