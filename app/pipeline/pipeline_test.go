package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/database"
	"github.com/lysyi3m/herald/app/dedup"
	"github.com/lysyi3m/herald/app/news"
	"github.com/lysyi3m/herald/app/paths"
)

var fixedNow = time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)

type fakeCollector struct {
	items []news.Item
	err   error
}

func (c *fakeCollector) Run(ctx context.Context, feeds []config.Feed) ([]news.Item, error) {
	return c.items, c.err
}

type memoryRuns struct {
	saved []database.Run
}

func (r *memoryRuns) SaveRun(run database.Run) (*database.Run, error) {
	r.saved = append(r.saved, run)
	return &run, nil
}

func (r *memoryRuns) GetRun(date string) (*database.Run, error) {
	return nil, database.ErrRunNotFound
}

func (r *memoryRuns) ListRuns(limit int) ([]database.Run, error) {
	return r.saved, nil
}

func (r *memoryRuns) GetRunCount() (int, error) {
	return len(r.saved), nil
}

func testConfig(keywords map[string][]string) *config.Config {
	return &config.Config{
		Feeds: []config.Feed{
			{Name: "hn", URL: "https://hn.example.com/rss", Type: config.FeedTypeHN, Weight: 0.25},
			{Name: "releases", URL: "https://gh.example.com/releases.atom", Type: config.FeedTypeGitHubRelease, Weight: 0.2},
		},
		Keywords:  keywords,
		Scoring:   config.Scoring{MaxItems: 10, HalfLifeHours: 24, ReleaseBoost: 0.15},
		Retention: config.Retention{SeenURLsDays: 90},
	}
}

func testItems() []news.Item {
	return []news.Item{
		{URL: "https://example.com/1", Title: "New MCP server for agents", Source: "hn", Published: fixedNow.Add(-2 * time.Hour), Extra: news.Extra{Points: news.IntPtr(300)}},
		{URL: "https://example.com/2", Title: "Weather forecast for tomorrow", Source: "hn", Published: fixedNow.Add(-time.Hour)},
		{URL: "https://example.com/3", Title: "SDK v2.0 adds agent tool use", Source: "releases", Published: fixedNow.Add(-20 * time.Hour), Extra: news.Extra{IsRelease: true}},
		{URL: "https://mirror.example.com/1", Title: "New MCP server for agents!", Source: "hn", Published: fixedNow},
	}
}

func newTestPipeline(cfg *config.Config) *Pipeline {
	p := New(cfg)
	p.now = func() time.Time { return fixedNow }
	return p
}

func newSeen(t *testing.T) *dedup.SeenStore {
	t.Helper()
	seen, err := dedup.NewSeenStore(filepath.Join(t.TempDir(), "seen_urls.txt"), 90)
	if err != nil {
		t.Fatalf("Failed to create seen store: %v", err)
	}
	return seen
}

func TestPipeline_ProcessWithKeywords(t *testing.T) {
	p := newTestPipeline(testConfig(map[string][]string{"ai_agents": {"agent", "mcp", "tool use"}}))

	result, err := p.Process(testItems(), newSeen(t), "2026-02-25")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Stats.Collected != 4 {
		t.Errorf("Expected collected 4, got %d", result.Stats.Collected)
	}
	if result.Stats.Filtered != 2 {
		t.Errorf("Expected filtered 2, got %d", result.Stats.Filtered)
	}
	if result.Stats.Kept != 2 {
		t.Errorf("Expected kept 2, got %d", result.Stats.Kept)
	}

	for _, item := range result.Items {
		if len(item.Topics) != 1 || item.Topics[0] != "ai_agents" {
			t.Errorf("Expected topics [ai_agents] for %s, got %v", item.URL, item.Topics)
		}
		if item.Score <= 0 {
			t.Errorf("Expected positive score for %s, got %f", item.URL, item.Score)
		}
		if item.KeywordDensity <= 0 {
			t.Errorf("Expected positive density for %s, got %f", item.URL, item.KeywordDensity)
		}
	}

	if result.Items[0].Score < result.Items[1].Score {
		t.Error("Expected items sorted by score")
	}

	var release *news.Item
	for i := range result.Items {
		if result.Items[i].URL == "https://example.com/3" {
			release = &result.Items[i]
		}
	}
	if release == nil || !release.IsRelease {
		t.Error("Expected release flag to be copied from extra")
	}
	if release != nil && release.HoursOld != 20 {
		t.Errorf("Expected 20 hours old, got %f", release.HoursOld)
	}

	if !strings.Contains(result.Digest, "# News Digest — 2026-02-25") {
		t.Errorf("Expected digest title, got:\n%s", result.Digest)
	}
	if !strings.Contains(result.Digest, "_Collected: 4 | Filtered: 2 | Kept: 2") {
		t.Errorf("Expected stats line, got:\n%s", result.Digest)
	}
}

func TestPipeline_ProcessWithoutKeywords(t *testing.T) {
	p := newTestPipeline(testConfig(nil))

	result, err := p.Process(testItems(), newSeen(t), "2026-02-25")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The mirror is rejected as a near-duplicate title.
	if result.Stats.Filtered != 3 {
		t.Errorf("Expected filtered 3, got %d", result.Stats.Filtered)
	}
	for _, item := range result.Items {
		if len(item.Topics) != 0 {
			t.Errorf("Expected no topics, got %v", item.Topics)
		}
		if item.KeywordDensity != 0 {
			t.Errorf("Expected zero density, got %f", item.KeywordDensity)
		}
	}
}

func TestPipeline_ProcessHardCap(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Scoring.MaxItems = 1

	result, err := newTestPipeline(cfg).Process(testItems(), newSeen(t), "2026-02-25")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Stats.Kept != 1 || len(result.Items) != 1 {
		t.Errorf("Expected 1 kept item, got %d", len(result.Items))
	}
}

func TestPipeline_ProcessEmptyURL(t *testing.T) {
	_, err := newTestPipeline(testConfig(nil)).Process([]news.Item{{Title: "x"}}, newSeen(t), "2026-02-25")
	if !errors.Is(err, dedup.ErrEmptyURL) {
		t.Errorf("Expected ErrEmptyURL, got %v", err)
	}
}

func TestDaily_Run(t *testing.T) {
	base := t.TempDir()
	p := paths.Paths{ConfigDir: filepath.Join(base, "config"), DataDir: filepath.Join(base, "data")}
	runs := &memoryRuns{}

	daily := NewDaily(p, testConfig(nil), &fakeCollector{items: testItems()}, runs)
	daily.now = func() time.Time { return fixedNow }

	result, err := daily.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	date := fixedNow.In(time.Local).Format(DateLayout)

	digest, err := os.ReadFile(filepath.Join(p.DigestsDir(), date+".md"))
	if err != nil {
		t.Fatalf("Expected digest file: %v", err)
	}
	if string(digest) != result.Digest {
		t.Error("Expected written digest to match result")
	}

	raw, err := os.ReadFile(filepath.Join(p.RawDir(), date+".jsonl"))
	if err != nil {
		t.Fatalf("Expected raw file: %v", err)
	}
	if lines := strings.Count(string(raw), "\n"); lines != 4 {
		t.Errorf("Expected 4 raw lines, got %d", lines)
	}

	seen, err := dedup.NewSeenStore(p.SeenURLsFile(), 90)
	if err != nil {
		t.Fatalf("Failed to reload seen store: %v", err)
	}
	if !seen.IsSeen("https://example.com/1") {
		t.Error("Expected emitted URL to be persisted as seen")
	}

	if len(runs.saved) != 1 || runs.saved[0].Date != date {
		t.Errorf("Expected one archived run for %s, got %+v", date, runs.saved)
	}

	second, err := daily.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error on second run: %v", err)
	}
	// Only the mirror is left: its URL was never emitted and the title it
	// duplicated is now filtered out as seen.
	if second.Stats.Kept != 1 || second.Items[0].URL != "https://mirror.example.com/1" {
		t.Errorf("Expected only the mirror on second run, got %+v", second.Items)
	}
}

func TestDaily_RunCollectError(t *testing.T) {
	base := t.TempDir()
	p := paths.Paths{ConfigDir: base, DataDir: base}

	daily := NewDaily(p, testConfig(nil), &fakeCollector{err: context.Canceled}, nil)

	if _, err := daily.Run(context.Background()); err == nil {
		t.Fatal("Expected collection error")
	}
	if _, err := os.Stat(p.SeenURLsFile()); !os.IsNotExist(err) {
		t.Error("Expected no seen file after failed run")
	}
}

func TestDemo_Run(t *testing.T) {
	demo := NewDemo(testConfig(nil), &fakeCollector{items: testItems()})
	demo.now = func() time.Time { return fixedNow }

	digest, err := demo.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(digest, "# Herald Demo — 2026-02-25 (live fetch, not saved)\n") {
		t.Errorf("Expected demo banner, got:\n%s", digest)
	}
	if strings.Contains(digest, "# News Digest") {
		t.Error("Expected original title to be replaced")
	}
	if !strings.Contains(digest, "> No topics configured") {
		t.Error("Expected no-keywords notice")
	}
	if !strings.HasSuffix(digest, demoFooter) {
		t.Error("Expected demo footer")
	}
}

func TestDecorateDemo(t *testing.T) {
	digest := "# News Digest — 2026-02-25\n\n_Collected: 1 | Filtered: 1 | Kept: 1 | Cost: $0.00_\n\n## 1. [A](https://a)\n"

	decorated := DecorateDemo(digest, "2026-02-25", false)

	statsIdx := strings.Index(decorated, "_Collected:")
	noticeIdx := strings.Index(decorated, "> No topics configured")
	itemIdx := strings.Index(decorated, "## 1.")
	if statsIdx < 0 || noticeIdx < statsIdx || itemIdx < noticeIdx {
		t.Errorf("Expected notice between stats and items, got:\n%s", decorated)
	}

	withKeywords := DecorateDemo(digest, "2026-02-25", true)
	if strings.Contains(withKeywords, "> No topics configured") {
		t.Error("Expected no notice when keywords are configured")
	}
}

func TestNewDemo_FallbackConfig(t *testing.T) {
	demo := NewDemo(nil, &fakeCollector{})

	if len(demo.config.Feeds) == 0 {
		t.Error("Expected fallback feeds")
	}
}
