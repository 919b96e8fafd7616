package config

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	BlankPreset   = "blank"
	DefaultPreset = "ai-engineering"

	DefaultMaxItems     = 10
	DefaultSeenURLsDays = 90
	DefaultFeedWeight   = 0.1
	DefaultHalfLife     = 24.0
	DefaultReleaseBoost = 0.15
)

var ErrInvalidPreset = errors.New("invalid preset name")

var presetNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validFeedTypes = map[string]bool{
	FeedTypeRSS:           true,
	FeedTypeAtom:          true,
	FeedTypeHN:            true,
	FeedTypeGitHubRelease: true,
	FeedTypeRelease:       true,
}

// Resolve loads the user overlay from configFile (if present), selects the
// preset (presetName, else the overlay's, else DefaultPreset) from
// presetsDir and applies the overlay on top.
func Resolve(presetsDir, presetName, configFile string) (*Config, error) {
	overlay, err := LoadOverlay(configFile)
	if err != nil {
		return nil, err
	}

	name := cmp.Or(presetName, overlay.Preset, DefaultPreset)
	if !presetNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPreset, name)
	}

	var base *Config
	if name == BlankPreset {
		base = &Config{}
	} else {
		base, err = LoadPreset(presetPath(presetsDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load preset %s: %w", name, err)
		}
	}

	cfg := ApplyOverlay(base, overlay)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config for preset %s: %w", name, err)
	}

	slog.Debug("Configuration resolved", "preset", name, "feeds", len(cfg.Feeds), "topics", len(cfg.Keywords), "max_items", cfg.Scoring.MaxItems)

	return cfg, nil
}

// Fallback is the config used when nothing can be resolved: the Hacker News
// front page with no keyword filter.
func Fallback() *Config {
	cfg := &Config{
		Feeds: []Feed{{
			Name:   "hn_frontpage",
			URL:    "https://hnrss.org/frontpage",
			Type:   FeedTypeHN,
			Weight: 0.25,
		}},
		Keywords: map[string][]string{},
	}
	applyDefaults(cfg)
	return cfg
}

func LoadPreset(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// LoadOverlay reads the user overlay. A missing file is an empty overlay.
func LoadOverlay(path string) (*Overlay, error) {
	var overlay Overlay
	if path == "" {
		return &overlay, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &overlay, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &overlay, nil
}

// ApplyOverlay returns a copy of base with overlay applied. Feeds are removed
// by name before additions are appended; topics likewise. base is untouched.
func ApplyOverlay(base *Config, overlay *Overlay) *Config {
	cfg := clone(base)
	if overlay == nil {
		return cfg
	}

	if len(overlay.RemoveFeeds) > 0 {
		cfg.Feeds = slices.DeleteFunc(cfg.Feeds, func(f Feed) bool {
			return slices.Contains(overlay.RemoveFeeds, f.Name)
		})
	}
	cfg.Feeds = append(cfg.Feeds, overlay.AddFeeds...)

	for _, topic := range overlay.RemoveKeywords {
		delete(cfg.Keywords, topic)
	}
	for topic, triggers := range overlay.AddKeywords {
		cfg.Keywords[topic] = slices.Clone(triggers)
	}

	if overlay.MaxItems != nil {
		cfg.Scoring.MaxItems = *overlay.MaxItems
	}

	return cfg
}

func clone(base *Config) *Config {
	cfg := &Config{Keywords: make(map[string][]string)}
	if base == nil {
		return cfg
	}

	cfg.Feeds = slices.Clone(base.Feeds)
	for topic, triggers := range base.Keywords {
		cfg.Keywords[topic] = slices.Clone(triggers)
	}
	cfg.Scoring = base.Scoring
	cfg.Retention = base.Retention

	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Scoring.MaxItems <= 0 {
		cfg.Scoring.MaxItems = DefaultMaxItems
	}
	if cfg.Scoring.HalfLifeHours <= 0 {
		cfg.Scoring.HalfLifeHours = DefaultHalfLife
	}
	if cfg.Scoring.ReleaseBoost <= 0 {
		cfg.Scoring.ReleaseBoost = DefaultReleaseBoost
	}
	if cfg.Retention.SeenURLsDays <= 0 {
		cfg.Retention.SeenURLsDays = DefaultSeenURLsDays
	}
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Type == "" {
			cfg.Feeds[i].Type = FeedTypeRSS
		}
		if cfg.Feeds[i].Weight == 0 {
			cfg.Feeds[i].Weight = DefaultFeedWeight
		}
	}
}

func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed at index %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %s: url is required", f.Name)
		}
		if !validFeedTypes[f.Type] {
			return fmt.Errorf("feed %s: invalid type %s", f.Name, f.Type)
		}
		if f.Weight < 0 {
			return fmt.Errorf("feed %s: weight must be non-negative", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("feed %s: duplicate name", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

func presetPath(dir, name string) string {
	path := filepath.Join(dir, name+".yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if alt := filepath.Join(dir, name+".yml"); fileExists(alt) {
			return alt
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
