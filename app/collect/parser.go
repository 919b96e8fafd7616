package collect

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/news"
)

var (
	hnPointsPattern   = regexp.MustCompile(`(?i)points:\s*(\d+)`)
	hnCommentsPattern = regexp.MustCompile(`(?i)#\s*comments:\s*(\d+)`)
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses a fetched feed into items attributed to feed. Entries without a
// usable link are dropped.
func (p *Parser) Run(data []byte, feed config.Feed, collectedAt time.Time) ([]news.Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]news.Item, 0, len(parsed.Items))
	dropped := 0
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}

		item, ok := p.normalizeItem(entry, feed, collectedAt)
		if !ok {
			dropped++
			continue
		}
		items = append(items, item)
	}

	if dropped > 0 {
		slog.Debug("Entries without link dropped", "feed", feed.Name, "count", dropped)
	}

	return items, nil
}

func (p *Parser) normalizeItem(entry *gofeed.Item, feed config.Feed, collectedAt time.Time) (news.Item, bool) {
	link := NormalizeURL(cmp.Or(entry.Link, linkFromGUID(entry.GUID)))
	if link == "" {
		return news.Item{}, false
	}

	description := cmp.Or(entry.Description, entry.Content)

	item := news.Item{
		URL:         link,
		Title:       strings.TrimSpace(norm.NFC.String(entry.Title)),
		Source:      feed.Name,
		CollectedAt: collectedAt.UTC(),
		Summary:     PlainText(description),
		Extra:       p.extractExtra(feed.Type, description, entry),
	}

	switch {
	case entry.PublishedParsed != nil:
		item.Published = entry.PublishedParsed.UTC()
	case entry.UpdatedParsed != nil:
		item.Published = entry.UpdatedParsed.UTC()
	}

	return item, true
}

func (p *Parser) extractExtra(feedType, description string, entry *gofeed.Item) news.Extra {
	var extra news.Extra

	switch feedType {
	case config.FeedTypeHN:
		text := PlainText(description)
		extra.Points = matchInt(hnPointsPattern, text)
		extra.Comments = matchInt(hnCommentsPattern, text)
		if strings.Contains(entry.GUID, "news.ycombinator.com") {
			extra.Other = map[string]string{"discussion_url": entry.GUID}
		}
	case config.FeedTypeGitHubRelease, config.FeedTypeRelease:
		extra.IsRelease = true
	}

	return extra
}

func matchInt(pattern *regexp.Regexp, text string) *int {
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return news.IntPtr(v)
}

func linkFromGUID(guid string) string {
	if strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}
