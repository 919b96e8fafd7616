package config

// Config is a resolved preset with the user overlay applied.
type Config struct {
	Feeds     []Feed              `yaml:"feeds"`
	Keywords  map[string][]string `yaml:"keywords"`
	Scoring   Scoring             `yaml:"scoring"`
	Retention Retention           `yaml:"retention"`
}

type Feed struct {
	Name   string  `yaml:"name"`
	URL    string  `yaml:"url"`
	Type   string  `yaml:"type"`
	Weight float64 `yaml:"weight"`
}

type Scoring struct {
	MaxItems      int     `yaml:"max_items"`
	HalfLifeHours float64 `yaml:"half_life_hours"`
	ReleaseBoost  float64 `yaml:"release_boost"`
}

type Retention struct {
	SeenURLsDays int `yaml:"seen_urls_days"`
}

// Overlay is the user's config.yaml. It selects a preset and edits it.
type Overlay struct {
	Preset         string              `yaml:"preset"`
	AddFeeds       []Feed              `yaml:"add_feeds"`
	RemoveFeeds    []string            `yaml:"remove_feeds"`
	AddKeywords    map[string][]string `yaml:"add_keywords"`
	RemoveKeywords []string            `yaml:"remove_keywords"`
	MaxItems       *int                `yaml:"max_items"`
}

const (
	FeedTypeRSS           = "rss"
	FeedTypeAtom          = "atom"
	FeedTypeHN            = "hn"
	FeedTypeGitHubRelease = "github_release"
	FeedTypeRelease       = "release"
)

// SourceWeights maps feed name to its scoring weight.
func (c *Config) SourceWeights() map[string]float64 {
	weights := make(map[string]float64, len(c.Feeds))
	for _, f := range c.Feeds {
		weights[f.Name] = f.Weight
	}
	return weights
}
