package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newsclip/internal/config"
	"newsclip/pkg/metadata"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-05-02")
	t.Cleanup(func() { SetVersionInfo("dev", "none", "unknown") })

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	if !strings.Contains(out, "newsclip 1.2.3 (commit: abc123, built: 2024-05-02)") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestInitConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	if _, err := execute(t, "init-config", path); err != nil {
		t.Fatalf("init-config failed: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("Written config does not load: %v", err)
	}

	if cfg.KeywordCount() == 0 {
		t.Error("Expected default keywords in written config")
	}

	if _, err := execute(t, "init-config", path); err == nil {
		t.Error("Expected refusal to overwrite existing config")
	}

	if _, err := execute(t, "init-config", "--force", path); err != nil {
		t.Errorf("Expected --force to overwrite: %v", err)
	}
}

func TestVerifyCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news_results_20240502_090000.html")

	signed := metadata.Sign("<html><body>뉴스</body></html>", metadata.Metadata{RunID: "run-1", Articles: 1})
	if err := os.WriteFile(path, []byte(signed), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := execute(t, "verify", path)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if !strings.Contains(out, "Run ID: run-1") {
		t.Errorf("Unexpected output %q", out)
	}

	tampered := strings.Replace(signed, "뉴스", "가짜", 1)
	if err := os.WriteFile(path, []byte(tampered), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := execute(t, "verify", path); err == nil {
		t.Error("Expected verify to fail on a modified report")
	}
}

func TestRunCmd_MissingCredentials(t *testing.T) {
	t.Setenv(config.EnvClientID, "")
	t.Setenv(config.EnvClientSecret, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	_, err := execute(t, "run", "--config", path, "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	if err == nil || !strings.Contains(err.Error(), config.EnvClientID) {
		t.Errorf("Expected missing credentials error, got %v", err)
	}
}

func TestRunCmd_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("categories: []\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := execute(t, "run", "--config", path); err == nil {
		t.Error("Expected invalid config to fail")
	}
}
