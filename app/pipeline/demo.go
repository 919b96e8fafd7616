package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lysyi3m/herald/app/analyze"
	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/dedup"
)

const (
	DemoFetchTimeout = 3 * time.Second
	DemoFetchRetries = 1

	demoFooter       = "\n_Demo run — results not saved. Run `/news init` for daily scheduled digests._\n"
	noKeywordsNotice = "\n> No topics configured — showing trending items. Run `/news init <topic>` for domain-specific results.\n"
)

// Demo runs the full pipeline against a throwaway seen store and returns
// the digest. Nothing is written outside a temp directory.
type Demo struct {
	config    *config.Config
	collector ItemCollector
	now       func() time.Time
}

// NewDemo builds a demo run. A nil cfg falls back to config.Fallback.
func NewDemo(cfg *config.Config, collector ItemCollector) *Demo {
	if cfg == nil {
		cfg = config.Fallback()
	}
	return &Demo{
		config:    cfg,
		collector: collector,
		now:       time.Now,
	}
}

func (d *Demo) Run(ctx context.Context) (string, error) {
	date := d.now().UTC().Format(DateLayout)

	items, err := d.collector.Run(ctx, d.config.Feeds)
	if err != nil {
		return "", fmt.Errorf("failed to collect items: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "herald-demo-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	seen, err := dedup.NewSeenStore(filepath.Join(tmpDir, "seen_urls.txt"), d.config.Retention.SeenURLsDays)
	if err != nil {
		return "", fmt.Errorf("failed to create seen store: %w", err)
	}

	p := New(d.config)
	result, err := p.Process(items, seen, date)
	if err != nil {
		return "", err
	}

	slog.Debug("Demo digest rendered", "kept", result.Stats.Kept)

	return DecorateDemo(result.Digest, date, p.HasKeywords()), nil
}

// DecorateDemo swaps the digest title for the demo banner, appends the demo
// footer and, without keywords, adds a notice after the stats line.
func DecorateDemo(digest, date string, hasKeywords bool) string {
	digest = strings.Replace(digest,
		analyze.TitlePrefix+date,
		fmt.Sprintf("# Herald Demo — %s (live fetch, not saved)", date),
		1)

	digest += demoFooter

	if hasKeywords {
		return digest
	}

	lines := strings.SplitAfter(digest, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, analyze.StatsPrefix) {
			lines = append(lines[:i+1], append([]string{noKeywordsNotice}, lines[i+1:]...)...)
			break
		}
	}

	return strings.Join(lines, "")
}
