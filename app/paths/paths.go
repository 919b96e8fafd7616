package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "herald"

// Paths holds the resolved base directories. The zero value is not usable;
// build one with Resolve.
type Paths struct {
	ConfigDir string
	DataDir   string
}

// Resolve returns the config and data directories. Non-empty overrides win;
// otherwise $XDG_CONFIG_HOME/herald and $XDG_DATA_HOME/herald are used,
// falling back to ~/.config/herald and ~/.local/share/herald.
func Resolve(configOverride, dataOverride string) (Paths, error) {
	configDir, err := resolveDir(configOverride, "XDG_CONFIG_HOME", ".config")
	if err != nil {
		return Paths{}, err
	}

	dataDir, err := resolveDir(dataOverride, "XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return Paths{}, err
	}

	return Paths{ConfigDir: configDir, DataDir: dataDir}, nil
}

func (p Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

func (p Paths) RawDir() string {
	return filepath.Join(p.DataDir, "data", "raw")
}

func (p Paths) DigestsDir() string {
	return filepath.Join(p.DataDir, "data", "digests")
}

func (p Paths) StateDir() string {
	return filepath.Join(p.DataDir, "data", "state")
}

func (p Paths) SeenURLsFile() string {
	return filepath.Join(p.StateDir(), "seen_urls.txt")
}

func (p Paths) DatabaseFile() string {
	return filepath.Join(p.StateDir(), "herald.db")
}

// EnsureDataDirs creates the raw, digests and state directories.
func (p Paths) EnsureDataDirs() error {
	for _, dir := range []string{p.RawDir(), p.DigestsDir(), p.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func resolveDir(override, envVar, homeRel string) (string, error) {
	if override != "" {
		return override, nil
	}

	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, homeRel, appName), nil
}
