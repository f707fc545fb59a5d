package gamefiles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteRconCredentialsCreatesDefaults(t *testing.T) {
	installPath := t.TempDir()

	pw := "hunter2"
	if err := WriteRconCredentials(installPath, &pw, nil); err != nil {
		t.Fatalf("WriteRconCredentials failed: %v", err)
	}

	creds, err := ReadRconCredentials(installPath)
	if err != nil {
		t.Fatal(err)
	}
	if creds.Password != "hunter2" {
		t.Errorf("password = %q, want hunter2", creds.Password)
	}
	if creds.Port != 21114 {
		t.Errorf("port = %d, want default 21114", creds.Port)
	}
}

func TestWriteRconCredentialsPartialUpdate(t *testing.T) {
	installPath := t.TempDir()
	path := RconConfigPath(installPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	seed := "// rcon settings\nPassword=old\nPort=21114\nTimeout=120\n"
	if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
		t.Fatal(err)
	}

	port := 27020
	if err := WriteRconCredentials(installPath, nil, &port); err != nil {
		t.Fatalf("WriteRconCredentials failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw := string(data)
	if !strings.Contains(raw, "Password=old") {
		t.Errorf("password line should be untouched:\n%s", raw)
	}
	if !strings.Contains(raw, "Port=27020") {
		t.Errorf("port line not rewritten:\n%s", raw)
	}
	if !strings.Contains(raw, "// rcon settings") || !strings.Contains(raw, "Timeout=120") {
		t.Errorf("unrelated lines lost:\n%s", raw)
	}
}

func TestWriteRconCredentialsAppendsMissingKey(t *testing.T) {
	installPath := t.TempDir()
	path := RconConfigPath(installPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("Port=21114\n"), 0644); err != nil {
		t.Fatal(err)
	}

	pw := "secret"
	if err := WriteRconCredentials(installPath, &pw, nil); err != nil {
		t.Fatal(err)
	}

	creds, err := ReadRconCredentials(installPath)
	if err != nil {
		t.Fatal(err)
	}
	if creds.Password != "secret" || creds.Port != 21114 {
		t.Errorf("creds = %+v", creds)
	}
}

func TestReadRconCredentialsMissingFile(t *testing.T) {
	creds, err := ReadRconCredentials(t.TempDir())
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if creds.Password != "" || creds.Port != 0 {
		t.Errorf("expected zero creds, got %+v", creds)
	}
}
