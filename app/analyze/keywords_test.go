package analyze

import (
	"slices"
	"testing"
)

func TestKeywordMatch(t *testing.T) {
	keywords := Keywords{
		"ai_agents": {"agent", "mcp", "claude code"},
		"ai_models": {"llm", "gpt", "claude"},
	}

	topics := KeywordMatch("New MCP server released for Claude Code", Keywords{
		"ai_agents": {"agent", "mcp", "claude code"},
	})
	if !slices.Equal(topics, []string{"ai_agents"}) {
		t.Errorf("Expected [ai_agents], got %v", topics)
	}

	topics = KeywordMatch("No relevant content here at all", keywords)
	if len(topics) != 0 {
		t.Errorf("Expected no topics, got %v", topics)
	}
}

func TestKeywordMatch_MultiTopic(t *testing.T) {
	keywords := Keywords{
		"ai_agents": {"agent", "mcp"},
		"ai_models": {"llm", "claude"},
	}

	topics := KeywordMatch("New Claude agent framework with LLM integration", keywords)
	if !slices.Equal(topics, []string{"ai_agents", "ai_models"}) {
		t.Errorf("Expected [ai_agents ai_models], got %v", topics)
	}
}

func TestKeywordMatch_UnicodeCaseFolding(t *testing.T) {
	keywords := Keywords{"streets": {"straße"}}

	topics := KeywordMatch("STRASSE closed for repairs", keywords)
	if !slices.Equal(topics, []string{"streets"}) {
		t.Errorf("Expected [streets], got %v", topics)
	}
}

func TestKeywordMatch_EmptyTable(t *testing.T) {
	if topics := KeywordMatch("anything at all", nil); topics != nil {
		t.Errorf("Expected nil topics, got %v", topics)
	}
}

func TestKeywordDensity(t *testing.T) {
	keywords := Keywords{"ai_agents": {"agent", "mcp", "tool use"}}

	density := KeywordDensity("AI agent with MCP tool use support", keywords)
	if density <= 0.1 {
		t.Errorf("Expected density > 0.1, got %f", density)
	}
	if density > 1.0 {
		t.Errorf("Expected density <= 1.0, got %f", density)
	}
}

func TestKeywordDensity_NoMatch(t *testing.T) {
	keywords := Keywords{"ai_agents": {"agent", "mcp"}}

	density := KeywordDensity("Weather forecast for tomorrow morning", keywords)
	if density != 0.0 {
		t.Errorf("Expected density 0.0, got %f", density)
	}
}

func TestKeywordDensity_Monotonic(t *testing.T) {
	text := "agent mcp llm release notes today"

	fewer := KeywordDensity(text, Keywords{"a": {"agent"}})
	more := KeywordDensity(text, Keywords{"a": {"agent"}, "b": {"mcp"}})

	if more < fewer {
		t.Errorf("Expected adding a matching trigger not to lower density: %f < %f", more, fewer)
	}
}

func TestKeywordDensity_Capped(t *testing.T) {
	keywords := Keywords{"a": {"agent", "agent mcp", "mcp"}}

	density := KeywordDensity("agent mcp", keywords)
	if density != 1.0 {
		t.Errorf("Expected density capped at 1.0, got %f", density)
	}
}

func TestKeywordDensity_DuplicateTriggersCountOnce(t *testing.T) {
	once := KeywordDensity("agent one two three", Keywords{"a": {"agent"}})
	twice := KeywordDensity("agent one two three", Keywords{"a": {"agent"}, "b": {"Agent"}})

	if once != twice {
		t.Errorf("Expected repeated trigger to count once: %f != %f", once, twice)
	}
}
