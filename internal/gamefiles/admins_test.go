package gamefiles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/squadmgr/squad-server-manager/internal/errs"
)

func writeAdminsFile(t *testing.T, installPath, content string) {
	t.Helper()
	path := AdminsPath(installPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readAdminsRaw(t *testing.T, installPath string) string {
	t.Helper()
	data, err := os.ReadFile(AdminsPath(installPath))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestDeleteAdminGroupCascades(t *testing.T) {
	installPath := t.TempDir()
	writeAdminsFile(t, installPath, `Group=A:kick,ban
Group=B:chat

Admin=p1:A //first
Admin=p2:a
Admin=p3:B
`)

	if err := DeleteAdminGroup(installPath, "A"); err != nil {
		t.Fatalf("DeleteAdminGroup failed: %v", err)
	}

	cfg, err := ReadAdmins(installPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0].Name != "B" {
		t.Errorf("group B should survive: %+v", cfg.Groups)
	}
	// p2 references "a" which matches case-insensitively and cascades too
	if len(cfg.Admins) != 1 || cfg.Admins[0].ID != "p3" {
		t.Errorf("only p3 should survive: %+v", cfg.Admins)
	}
}

func TestDeleteAdminGroupMissing(t *testing.T) {
	installPath := t.TempDir()
	writeAdminsFile(t, installPath, "Group=B:chat\n")

	if err := DeleteAdminGroup(installPath, "nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestAddAdminGroupInsertsBeforeAdmins(t *testing.T) {
	installPath := t.TempDir()
	writeAdminsFile(t, installPath, `Group=A:kick

Admin=p1:A
`)

	if err := AddAdminGroup(installPath, "Moderator", []string{"chat", "kick"}); err != nil {
		t.Fatalf("AddAdminGroup failed: %v", err)
	}

	raw := readAdminsRaw(t, installPath)
	groupIdx := strings.Index(raw, "Group=Moderator:chat,kick")
	adminIdx := strings.Index(raw, "Admin=p1:A")
	if groupIdx == -1 || adminIdx == -1 || groupIdx > adminIdx {
		t.Errorf("new group not inserted before admin lines:\n%s", raw)
	}
}

func TestAddAdminGroupDuplicateCaseInsensitive(t *testing.T) {
	installPath := t.TempDir()
	writeAdminsFile(t, installPath, "Group=Moderator:chat\n")

	err := AddAdminGroup(installPath, "moderator", []string{"kick"})
	if !errors.Is(err, errs.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestAddAdminGroupEmptyFileAppends(t *testing.T) {
	installPath := t.TempDir()

	if err := AddAdminGroup(installPath, "A", []string{"kick"}); err != nil {
		t.Fatalf("AddAdminGroup on fresh file failed: %v", err)
	}
	cfg, err := ReadAdmins(installPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Groups) != 1 {
		t.Errorf("expected 1 group, got %+v", cfg.Groups)
	}
}

func TestAddAdminRequiresGroup(t *testing.T) {
	installPath := t.TempDir()
	writeAdminsFile(t, installPath, "Group=A:kick\n")

	if err := AddAdmin(installPath, "p9", "Missing", ""); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected validation error for unknown group, got %v", err)
	}

	if err := AddAdmin(installPath, "p9", "A", "trial"); err != nil {
		t.Fatalf("AddAdmin failed: %v", err)
	}
	cfg, _ := ReadAdmins(installPath)
	if len(cfg.Admins) != 1 || cfg.Admins[0].Comment != "trial" {
		t.Errorf("unexpected admins: %+v", cfg.Admins)
	}
}

func TestAdminRoundTripPreservesComments(t *testing.T) {
	installPath := t.TempDir()
	content := `// managed by ops
# do not edit by hand

Group=A:kick

Admin=p1:A
`
	writeAdminsFile(t, installPath, content)

	if err := AddAdmin(installPath, "p2", "A", ""); err != nil {
		t.Fatal(err)
	}

	raw := readAdminsRaw(t, installPath)
	if !strings.Contains(raw, "// managed by ops") || !strings.Contains(raw, "# do not edit by hand") {
		t.Errorf("comment lines lost:\n%s", raw)
	}
}

func TestRemoveAdminByOriginalLine(t *testing.T) {
	installPath := t.TempDir()
	writeAdminsFile(t, installPath, "Group=A:kick\nAdmin=p1:A //x\nAdmin=p2:A\n")

	if err := RemoveAdmin(installPath, "Admin=p1:A //x"); err != nil {
		t.Fatal(err)
	}
	cfg, _ := ReadAdmins(installPath)
	if len(cfg.Admins) != 1 || cfg.Admins[0].ID != "p2" {
		t.Errorf("unexpected admins after removal: %+v", cfg.Admins)
	}
}
