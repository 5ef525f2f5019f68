// Package factfinder answers factual questions with a tool-using agent and
// returns a JSON envelope carrying the answer, the reasoning and the cited
// sources.
package factfinder

import (
	"context"

	"github.com/w-h-a/factfinder/generator"
	"github.com/w-h-a/factfinder/internal/service/agent"
	"github.com/w-h-a/factfinder/internal/service/query"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
	"github.com/w-h-a/factfinder/tool_handler/encyclopedia"
	"github.com/w-h-a/factfinder/tool_handler/querygen"
	"github.com/w-h-a/factfinder/tool_handler/websearch"
)

// ErrMalformedAnswer is returned by ProcessQuery when the agent's final text
// is not the expected JSON object.
var ErrMalformedAnswer = query.ErrMalformedAnswer

type FactFinder struct {
	query *query.Service
}

// ProcessQuery runs the agent once for question and returns the envelope
// JSON for id. It is safe for concurrent use.
func (f *FactFinder) ProcessQuery(ctx context.Context, question string, id any) (string, error) {
	return f.query.ProcessQuery(ctx, question, id)
}

// DefaultToolHandlers builds the standard tool set: the search-query
// generator and a three-result web search. The encyclopedia lookup is only
// added when withEncyclopedia is set.
func DefaultToolHandlers(gen generator.Generator, searchApiKey string, withEncyclopedia bool) []toolhandler.ToolHandler {
	toolHandlers := []toolhandler.ToolHandler{
		querygen.NewToolHandler(
			toolhandler.WithGenerator(gen),
		),
		websearch.NewToolHandler(
			toolhandler.WithApiKey(searchApiKey),
			toolhandler.WithMaxResults(websearch.DefaultMaxResults),
		),
	}

	if withEncyclopedia {
		toolHandlers = append(toolHandlers, encyclopedia.NewToolHandler(
			toolhandler.WithMaxResults(encyclopedia.DefaultMaxResults),
		))
	}

	return toolHandlers
}

func New(
	generator generator.Generator,
	toolHandlers []toolhandler.ToolHandler,
	maxIterations int,
	systemPrompt string,
) *FactFinder {
	runner := agent.New(
		generator,
		toolHandlers,
		maxIterations,
		systemPrompt,
	)

	return &FactFinder{
		query: query.New(runner),
	}
}
