// Package config loads a project's compilation settings from a TOML file,
// the same struct-tag-driven unmarshal style as the teacher's
// mods.LoadModule (src/mods/load.go), generalized from Chai's module/
// profile settings to this module's include-path/macro/diagnostic-severity
// settings.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"svcore/diag"
)

// tomlConfig is the on-disk shape; Config (below) is the validated,
// in-memory form callers actually use.
type tomlConfig struct {
	Project tomlProject `toml:"project"`
}

type tomlProject struct {
	Name             string            `toml:"name"`
	UserIncludeDirs  []string          `toml:"include_dirs"`
	LibraryDirs      []string          `toml:"library_dirs"`
	SystemIncludeDirs []string         `toml:"system_include_dirs"`
	Defines          map[string]string `toml:"defines"`
	MaxBitWidth      int               `toml:"max_bit_width"`
	DiagnosticLevels map[string]string `toml:"diagnostic_levels"`
}

// Config is the validated configuration a Compilation is built from.
type Config struct {
	Name              string
	UserIncludeDirs   []string
	LibraryDirs       []string
	SystemIncludeDirs []string
	Defines           map[string]string
	MaxBitWidth       int
	SeverityOverrides map[diag.Code]diag.Severity
}

// Default returns the configuration used when no project file is present.
func Default() Config {
	return Config{MaxBitWidth: 0, Defines: map[string]string{}, SeverityOverrides: map[diag.Code]diag.Severity{}}
}

// Load reads and validates the TOML project file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tc tomlConfig
	if err := toml.Unmarshal(data, &tc); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := Config{
		Name:              tc.Project.Name,
		UserIncludeDirs:   tc.Project.UserIncludeDirs,
		LibraryDirs:       tc.Project.LibraryDirs,
		SystemIncludeDirs: tc.Project.SystemIncludeDirs,
		Defines:           tc.Project.Defines,
		MaxBitWidth:       tc.Project.MaxBitWidth,
		SeverityOverrides: make(map[diag.Code]diag.Severity),
	}
	if cfg.Defines == nil {
		cfg.Defines = map[string]string{}
	}

	for code, levelName := range tc.Project.DiagnosticLevels {
		sev, ok := parseSeverity(levelName)
		if !ok {
			return Config{}, fmt.Errorf("config: unknown diagnostic level %q for %q", levelName, code)
		}
		cfg.SeverityOverrides[diag.Code(code)] = sev
	}

	return cfg, nil
}

func parseSeverity(name string) (diag.Severity, bool) {
	switch name {
	case "note":
		return diag.Note, true
	case "warning":
		return diag.Warning, true
	case "error":
		return diag.Error, true
	case "fatal":
		return diag.Fatal, true
	default:
		return 0, false
	}
}
