package dedup

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/herald/app/news"
)

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"abcd", "abcd", 1.0},
		{"abcd", "bcde", 0.75},
		{"abxcd", "abcd", 8.0 / 9.0},
	}

	for _, c := range cases {
		got := Ratio(c.a, c.b)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q): expected %f, got %f", c.a, c.b, c.want, got)
		}
	}
}

func TestIsTitleDuplicate(t *testing.T) {
	existing := []string{"OpenAI releases GPT-5 with amazing new capabilities"}

	if !IsTitleDuplicate("OpenAI releases GPT-5 with amazing capabilities", existing, DefaultTitleThreshold) {
		t.Error("Expected near-identical title to be a duplicate")
	}
	if IsTitleDuplicate("Google announces Gemini 3.0", existing, DefaultTitleThreshold) {
		t.Error("Expected unrelated title not to be a duplicate")
	}
}

func TestIsTitleDuplicate_CaseInsensitive(t *testing.T) {
	if !IsTitleDuplicate("HELLO WORLD", []string{"hello world"}, DefaultTitleThreshold) {
		t.Error("Expected comparison to ignore case")
	}
}

func TestIsTitleDuplicate_EmptyExisting(t *testing.T) {
	if IsTitleDuplicate("Anything", nil, DefaultTitleThreshold) {
		t.Error("Expected no duplicate against empty list")
	}
}

func newTestStore(t *testing.T) *SeenStore {
	t.Helper()
	store, err := NewSeenStore(filepath.Join(t.TempDir(), "seen_urls.txt"), 90)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestDeduper_Run(t *testing.T) {
	store := newTestStore(t)
	store.Add("https://example.com/old")

	items := []news.Item{
		{URL: "https://example.com/old", Title: "Already seen story"},
		{URL: "https://example.com/1", Title: "OpenAI releases GPT-5 with amazing new capabilities"},
		{URL: "https://mirror.example.com/1", Title: "OpenAI releases GPT-5 with amazing capabilities"},
		{URL: "https://example.com/2", Title: "Google announces Gemini 3.0"},
	}

	result, stats, err := NewDeduper(0).Run(items, store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	if result[0].URL != "https://example.com/1" || result[1].URL != "https://example.com/2" {
		t.Errorf("Expected input order preserved, got %s, %s", result[0].URL, result[1].URL)
	}
	if stats.Seen != 1 || stats.Similar != 1 || stats.Accepted != 2 {
		t.Errorf("Expected stats {1 1 2}, got %+v", stats)
	}

	if !store.IsSeen("https://example.com/2") {
		t.Error("Expected accepted URL to be recorded in store")
	}
	if store.IsSeen("https://mirror.example.com/1") {
		t.Error("Expected rejected URL not to be recorded in store")
	}
}

func TestDeduper_RunTwiceIsEmpty(t *testing.T) {
	store := newTestStore(t)
	deduper := NewDeduper(DefaultTitleThreshold)

	items := []news.Item{
		{URL: "https://example.com/a", Title: "First story"},
		{URL: "https://example.com/b", Title: "Completely different headline"},
	}

	first, _, err := deduper.Run(items, store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("Expected 2 items on first run, got %d", len(first))
	}

	second, _, err := deduper.Run(first, store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("Expected 0 items on second run, got %d", len(second))
	}
}

func TestDeduper_EmptyURL(t *testing.T) {
	store := newTestStore(t)

	_, _, err := NewDeduper(0).Run([]news.Item{{Title: "No link"}}, store)
	if !errors.Is(err, ErrEmptyURL) {
		t.Errorf("Expected ErrEmptyURL, got %v", err)
	}
}
