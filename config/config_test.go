package config

import (
	"os"
	"path/filepath"
	"testing"

	"svcore/diag"
)

func TestLoadParsesProjectSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	contents := `
[project]
name = "widgets"
include_dirs = ["inc"]
max_bit_width = 4096

[project.defines]
SIM = "1"

[project.diagnostic_levels]
value_out_of_range = "warning"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if cfg.Name != "widgets" {
		t.Fatalf("Name = %q, want widgets", cfg.Name)
	}
	if len(cfg.UserIncludeDirs) != 1 || cfg.UserIncludeDirs[0] != "inc" {
		t.Fatalf("UserIncludeDirs = %v", cfg.UserIncludeDirs)
	}
	if cfg.MaxBitWidth != 4096 {
		t.Fatalf("MaxBitWidth = %d, want 4096", cfg.MaxBitWidth)
	}
	if cfg.Defines["SIM"] != "1" {
		t.Fatalf("Defines[SIM] = %q, want 1", cfg.Defines["SIM"])
	}
	sev, ok := cfg.SeverityOverrides[diag.Code("value_out_of_range")]
	if !ok || sev != diag.Warning {
		t.Fatalf("SeverityOverrides[value_out_of_range] = %v, ok=%v", sev, ok)
	}
}

func TestLoadRejectsUnknownSeverityName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	contents := `
[project]
name = "widgets"

[project.diagnostic_levels]
value_out_of_range = "catastrophic"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected Load to reject an unrecognized severity name")
	}
}

func TestDefaultHasEmptyMaps(t *testing.T) {
	cfg := Default()
	if cfg.Defines == nil || cfg.SeverityOverrides == nil {
		t.Fatal("Default should return initialized, non-nil maps")
	}
}
