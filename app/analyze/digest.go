package analyze

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/lysyi3m/herald/app/news"
)

const (
	TitlePrefix = "# News Digest — "
	StatsPrefix = "_Collected:"

	MaxTextLength = 500
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders items in the given order below a title line carrying date and
// a stats line.
func (g *Generator) Run(items []news.Item, date string, stats news.Stats) string {
	var buf bytes.Buffer

	buf.WriteString(TitlePrefix)
	buf.WriteString(SanitizeText(date))
	buf.WriteString("\n\n")

	fmt.Fprintf(&buf, "%s %d | Filtered: %d | Kept: %d | Cost: $%.2f_\n",
		StatsPrefix, stats.Collected, stats.Filtered, stats.Kept, stats.Cost)

	if len(items) == 0 {
		buf.WriteString("\nNo new items today.\n")
		return buf.String()
	}

	for i, item := range items {
		g.writeItem(&buf, i+1, item)
	}

	return buf.String()
}

func (g *Generator) writeItem(buf *bytes.Buffer, n int, item news.Item) {
	title := cmp.Or(singleLine(SanitizeText(item.Title)), "Untitled")

	fmt.Fprintf(buf, "\n## %d. [%s](%s)\n", n, escapeLinkText(title), escapeLinkURL(SanitizeText(item.URL)))

	topics := make([]string, 0, len(item.Topics))
	for _, topic := range item.Topics {
		if t := singleLine(SanitizeText(topic)); t != "" {
			topics = append(topics, t)
		}
	}

	fmt.Fprintf(buf, "**Topics:** %s | **Source:** %s | **Score:** %.2f\n",
		cmp.Or(strings.Join(topics, ", "), "uncategorized"),
		cmp.Or(singleLine(SanitizeText(item.Source)), "unknown"),
		item.Score)

	// One paragraph per summary; no line of it can start a block.
	if summary := singleLine(SanitizeText(item.Summary)); summary != "" {
		buf.WriteString("\n")
		buf.WriteString(summary)
		buf.WriteString("\n")
	}
}

// SanitizeText drops control characters other than tab, newline and carriage
// return, then truncates to MaxTextLength runes.
func SanitizeText(text string) string {
	var b strings.Builder
	b.Grow(min(len(text), MaxTextLength*4))

	n := 0
	for _, r := range text {
		if (r < 0x20 && r != '\t' && r != '\n' && r != '\r') || r == 0x7f {
			continue
		}
		if n == MaxTextLength {
			break
		}
		b.WriteRune(r)
		n++
	}

	return b.String()
}

var (
	linkTextEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)
	linkURLEscaper  = strings.NewReplacer(" ", "%20", "\t", "%09", "\n", "%0A", "\r", "%0D", "(", "%28", ")", "%29", "<", "%3C", ">", "%3E")
)

func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}

func escapeLinkURL(s string) string {
	return linkURLEscaper.Replace(strings.TrimSpace(s))
}

// singleLine collapses every whitespace run, newlines included, to one space.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
