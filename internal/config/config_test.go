package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	t.Setenv("CONSOLIDATIONS_TEMPLATE_DIR", "")
	t.Setenv("CONSOLIDATIONS_DATA_DIR", "")

	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if info.PortSpecified {
		t.Fatalf("port should not be marked as specified")
	}
	if cfg.Server.Port != 20262 || cfg.Templates.YearPrefix != "20XX" || cfg.Consolidation.Atomic {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxUploadBytes() != 32<<20 {
		t.Fatalf("max upload=%d", cfg.MaxUploadBytes())
	}
}

func TestLoadFileOverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 8088

[templates]
dir = "/srv/templates"
year_prefix = "2024"

[consolidation]
atomic = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("CONSOLIDATIONS_TEMPLATE_DIR", "")
	t.Setenv("CONSOLIDATIONS_DATA_DIR", "/tmp/consolidations-data")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !info.PortSpecified || cfg.Server.Port != 8088 {
		t.Fatalf("port=%d specified=%v", cfg.Server.Port, info.PortSpecified)
	}
	if cfg.Templates.Dir != "/srv/templates" || cfg.Templates.YearPrefix != "2024" || !cfg.Consolidation.Atomic {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Data.DataDir != "/tmp/consolidations-data" {
		t.Fatalf("env override not applied: %q", cfg.Data.DataDir)
	}
	// 未写出的段保持默认值
	if cfg.Upload.MaxFileSizeMB != 32 {
		t.Fatalf("max_file_size_mb=%d", cfg.Upload.MaxFileSizeMB)
	}
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	t.Setenv("CONSOLIDATIONS_TEMPLATE_DIR", "")
	t.Setenv("CONSOLIDATIONS_DATA_DIR", "")

	for name, content := range map[string]string{
		"port":   "[server]\nport = 70000\n",
		"prefix": "[templates]\nyear_prefix = \"\"\n",
		"upload": "[upload]\nmax_file_size_mb = 0\n",
		"syntax": "[server\nport = 1\n",
	} {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write config failed: %v", err)
		}
		if _, _, err := LoadFile(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("CONSOLIDATIONS_TEMPLATE_DIR", "")
	t.Setenv("CONSOLIDATIONS_DATA_DIR", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Consolidation.Atomic = true
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !loaded.Consolidation.Atomic || !info.PortSpecified {
		t.Fatalf("unexpected loaded config: %+v", loaded)
	}
}
