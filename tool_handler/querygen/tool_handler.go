package querygen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/w-h-a/factfinder/generator"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
	getsafe "github.com/w-h-a/factfinder/util/get_safe"
)

const (
	Name = "search_query_generator"

	DefaultSeparator = ", "
	MaxQueries       = 5
)

type queryGenToolHandler struct {
	options   toolhandler.Options
	separator string
}

func (th *queryGenToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        Name,
		Kind:        toolhandler.KindSearchQueryGenerator,
		Description: description,
		InputSchema: toolhandler.ObjectSchema(map[string]any{
			"original_query": toolhandler.StringProperty("The original user question or request"),
		}, "original_query"),
	}
}

func (th *queryGenToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	question := getsafe.String(req.Arguments, "original_query")
	if len(question) == 0 {
		question = getsafe.String(req.Arguments, "input")
	}
	if len(strings.TrimSpace(question)) == 0 {
		return toolhandler.ToolResponse{}, fmt.Errorf("missing 'original_query' argument")
	}

	queries, err := th.generate(ctx, question)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	content, err := json.Marshal(queries)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.ToolResponse{
		Content: string(content),
		Queries: queries,
	}, nil
}

func (th *queryGenToolHandler) generate(ctx context.Context, question string) ([]string, error) {
	messages := []generator.Message{
		generator.SystemMessage(strings.ReplaceAll(systemPrompt, "{question}", question)),
		generator.UserMessage(question),
	}

	rsp, err := th.options.Generator.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	queries := strings.Split(rsp.Content, th.separator)
	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}

	return queries, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	if options.Generator == nil {
		panic("generator is required")
	}

	th := &queryGenToolHandler{
		options:   options,
		separator: DefaultSeparator,
	}

	if sep, ok := SeparatorFrom(options.Context); ok && len(sep) > 0 {
		th.separator = sep
	}

	return th
}
