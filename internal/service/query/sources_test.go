package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/w-h-a/factfinder/internal/service/agent"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
)

func encyclopediaStep(content string) agent.Step {
	return agent.Step{
		Action:      agent.Action{Tool: "Wikipedia", Kind: toolhandler.KindEncyclopedia},
		Observation: toolhandler.ToolResponse{Content: content},
	}
}

func TestExtractSourcesOverlappingWebSearches(t *testing.T) {
	sources := ExtractSources([]agent.Step{webStep("a", "b"), webStep("b", "c")})

	assert.ElementsMatch(t, []string{"a", "b", "c"}, sources)
}

func TestExtractSourcesEncyclopedia(t *testing.T) {
	sources := ExtractSources([]agent.Step{encyclopediaStep("Paris is the capital... Sources: x, y")})

	assert.ElementsMatch(t, []string{"x", "y"}, sources)
}

func TestExtractSourcesCapsAndDedupes(t *testing.T) {
	sources := ExtractSources([]agent.Step{
		webStep("a", "b", "a"),
		encyclopediaStep("text Sources: c, d, a"),
		webStep("e"),
	})

	assert.Len(t, sources, MaxSources)
	seen := map[string]bool{}
	for _, s := range sources {
		assert.False(t, seen[s], "duplicate %s", s)
		seen[s] = true
	}
}

func TestExtractSourcesIgnoresOtherTools(t *testing.T) {
	sources := ExtractSources([]agent.Step{
		{
			Action:      agent.Action{Tool: "search_query_generator", Kind: toolhandler.KindSearchQueryGenerator},
			Observation: toolhandler.ToolResponse{Content: "Sources: z"},
		},
		{
			Action:      agent.Action{Tool: agent.ExceptionTool},
			Observation: toolhandler.ToolResponse{Content: "Sources: q"},
		},
		encyclopediaStep("no marker here"),
		webStep(""),
	})

	assert.NotNil(t, sources)
	assert.Empty(t, sources)
}
