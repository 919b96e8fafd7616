package collect

import (
	"testing"
	"time"

	"github.com/lysyi3m/herald/app/config"
)

const hnFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Hacker News: Front Page</title>
    <link>https://news.ycombinator.com/</link>
    <item>
      <title>Show HN: A tiny MCP server</title>
      <link>https://example.com/mcp?utm_source=hnrss</link>
      <description><![CDATA[<p>Article URL: https://example.com/mcp</p><p>Points: 412</p><p># Comments: 87</p>]]></description>
      <pubDate>Wed, 25 Feb 2026 10:00:00 +0000</pubDate>
      <guid isPermaLink="false">https://news.ycombinator.com/item?id=1</guid>
    </item>
    <item>
      <title>No link here</title>
      <description>Orphan entry</description>
    </item>
  </channel>
</rss>`

const releaseFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Release notes from sdk</title>
  <entry>
    <id>tag:github.com,2008:Repository/1/v1.2.0</id>
    <title>v1.2.0</title>
    <link rel="alternate" href="https://github.com/acme/sdk/releases/tag/v1.2.0"/>
    <updated>2026-02-24T08:30:00Z</updated>
    <content type="html">&lt;p&gt;Bug fixes&lt;/p&gt;</content>
  </entry>
</feed>`

func TestParser_RunHN(t *testing.T) {
	collectedAt := time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)
	feed := config.Feed{Name: "hn_frontpage", Type: config.FeedTypeHN}

	items, err := NewParser().Run([]byte(hnFeed), feed, collectedAt)
	if err != nil {
		t.Fatalf("Failed to parse feed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.URL != "https://example.com/mcp" {
		t.Errorf("Expected normalised URL, got '%s'", item.URL)
	}
	if item.Title != "Show HN: A tiny MCP server" {
		t.Errorf("Expected title 'Show HN: A tiny MCP server', got '%s'", item.Title)
	}
	if item.Source != "hn_frontpage" {
		t.Errorf("Expected source 'hn_frontpage', got '%s'", item.Source)
	}
	if !item.CollectedAt.Equal(collectedAt) {
		t.Errorf("Expected collected_at %v, got %v", collectedAt, item.CollectedAt)
	}
	if !item.Published.Equal(time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected published 2026-02-25T10:00:00Z, got %v", item.Published)
	}
	if item.Extra.Points == nil || *item.Extra.Points != 412 {
		t.Errorf("Expected 412 points, got %v", item.Extra.Points)
	}
	if item.Extra.Comments == nil || *item.Extra.Comments != 87 {
		t.Errorf("Expected 87 comments, got %v", item.Extra.Comments)
	}
	if item.Extra.IsRelease {
		t.Error("Expected HN item not to be a release")
	}
	if item.Summary == "" {
		t.Error("Expected summary to be extracted")
	}
}

func TestParser_RunRelease(t *testing.T) {
	feed := config.Feed{Name: "sdk_releases", Type: config.FeedTypeGitHubRelease}

	items, err := NewParser().Run([]byte(releaseFeed), feed, time.Now())
	if err != nil {
		t.Fatalf("Failed to parse feed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if !item.Extra.IsRelease {
		t.Error("Expected release feed item to be marked as release")
	}
	if item.Extra.Points != nil {
		t.Errorf("Expected no points, got %d", *item.Extra.Points)
	}
	if item.Published.IsZero() {
		t.Error("Expected published to fall back to updated")
	}
	if item.Summary != "Bug fixes" {
		t.Errorf("Expected summary 'Bug fixes', got '%s'", item.Summary)
	}
}

func TestParser_RunInvalid(t *testing.T) {
	if _, err := NewParser().Run([]byte("not a feed"), config.Feed{Name: "x"}, time.Now()); err == nil {
		t.Error("Expected error for invalid feed data")
	}
}
