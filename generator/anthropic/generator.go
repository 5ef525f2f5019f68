package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/factfinder/generator"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Chat(ctx context.Context, messages []generator.Message, opts ...generator.ChatOption) (generator.Reply, error) {
	options := generator.NewChatOptions(opts...)

	system, msgs := encodeMessages(messages)

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		System:    system,
		Messages:  msgs,
		Tools:     encodeTools(options.Tools),
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return generator.Reply{}, err
	}

	var b strings.Builder
	reply := generator.Reply{}
	for _, content := range rsp.Content {
		switch block := content.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			reply.ToolCalls = append(reply.ToolCalls, generator.ToolCall{
				Id:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	reply.Content = b.String()

	if len(reply.Content) == 0 && len(reply.ToolCalls) == 0 {
		return generator.Reply{}, errors.New("no response from Anthropic")
	}

	return reply, nil
}

func encodeMessages(messages []generator.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam

	// consecutive tool results travel together in one user turn
	var results []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range messages {
		if m.Role != generator.RoleTool {
			flush()
		}

		switch m.Role {
		case generator.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case generator.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if len(m.Content) > 0 {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, call := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.Id, json.RawMessage(normalizeArguments(call.Arguments)), call.Name))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case generator.RoleTool:
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallId, m.Content, false))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	flush()

	return system, out
}

func encodeTools(defs []generator.ToolDefinition) []anthropic.ToolUnionParam {
	if len(defs) == 0 {
		return nil
	}

	tools := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		tool := anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: def.InputSchema["properties"],
				Required:   requiredFields(def.InputSchema),
			},
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}

	return tools
}

func requiredFields(schema map[string]any) []string {
	switch v := schema["required"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func normalizeArguments(raw string) string {
	if len(strings.TrimSpace(raw)) == 0 || !json.Valid([]byte(raw)) {
		return "{}"
	}
	return raw
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &anthropicGenerator{
		options: options,
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
		anthropicopt.WithHTTPClient(&http.Client{Timeout: options.Timeout}),
	}
	if len(options.BaseURL) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
