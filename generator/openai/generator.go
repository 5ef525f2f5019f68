package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/factfinder/generator"
)

// ChatClient is the subset of the go-openai client the generator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type openAIGenerator struct {
	options generator.Options
	client  ChatClient
}

func (g *openAIGenerator) Chat(ctx context.Context, messages []generator.Message, opts ...generator.ChatOption) (generator.Reply, error) {
	options := generator.NewChatOptions(opts...)

	tools, err := encodeTools(options.Tools)
	if err != nil {
		return generator.Reply{}, err
	}

	req := openai.ChatCompletionRequest{
		Model:    g.options.Model,
		Messages: encodeMessages(messages),
		Tools:    tools,
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return generator.Reply{}, err
	}

	if len(rsp.Choices) == 0 {
		return generator.Reply{}, errors.New("no response from OpenAI")
	}

	msg := rsp.Choices[0].Message

	reply := generator.Reply{Content: msg.Content}
	for _, call := range msg.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, generator.ToolCall{
			Id:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return reply, nil
}

func encodeMessages(messages []generator.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}

		switch m.Role {
		case generator.RoleTool:
			msg.ToolCallID = m.ToolCallId
			msg.Name = m.ToolName
		case generator.RoleAssistant:
			for _, call := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   call.Id,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
		}

		out = append(out, msg)
	}

	return out
}

func encodeTools(defs []generator.ToolDefinition) ([]openai.Tool, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	tools := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		params, err := json.Marshal(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal tool %s schema: %w", def.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  json.RawMessage(params),
			},
		})
	}

	return tools, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	if client, ok := ChatClientFrom(options.Context); ok {
		g.client = client
		return g
	}

	config := openai.DefaultConfig(options.ApiKey)
	if len(options.BaseURL) > 0 {
		config.BaseURL = strings.TrimRight(options.BaseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: options.Timeout}

	g.client = openai.NewClientWithConfig(config)

	return g
}
