package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/factfinder/generator"
	genaiopt "google.golang.org/api/option"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Chat(ctx context.Context, messages []generator.Message, opts ...generator.ChatOption) (generator.Reply, error) {
	options := generator.NewChatOptions(opts...)

	model := g.client.GenerativeModel(g.options.Model)

	system, history, err := encodeMessages(messages)
	if err != nil {
		return generator.Reply{}, err
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}

	if len(options.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(options.Tools))
		for _, def := range options.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  toSchema(def.InputSchema),
			})
		}
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	if len(history) == 0 {
		return generator.Reply{}, errors.New("messages are required")
	}

	cs := model.StartChat()
	cs.History = history[:len(history)-1]

	rsp, err := cs.SendMessage(ctx, history[len(history)-1].Parts...)
	if err != nil {
		return generator.Reply{}, err
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return generator.Reply{}, errors.New("no response from Google")
	}

	var b strings.Builder
	reply := generator.Reply{}
	for i, part := range rsp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			b.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return generator.Reply{}, fmt.Errorf("marshal %s arguments: %w", p.Name, err)
			}
			reply.ToolCalls = append(reply.ToolCalls, generator.ToolCall{
				Id:        fmt.Sprintf("%s-%d", p.Name, i),
				Name:      p.Name,
				Arguments: string(args),
			})
		}
	}
	reply.Content = b.String()

	return reply, nil
}

func encodeMessages(messages []generator.Message) ([]genai.Part, []*genai.Content, error) {
	var system []genai.Part
	var history []*genai.Content

	appendParts := func(role string, parts ...genai.Part) {
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, parts...)
			return
		}
		history = append(history, &genai.Content{Role: role, Parts: parts})
	}

	for _, m := range messages {
		switch m.Role {
		case generator.RoleSystem:
			system = append(system, genai.Text(m.Content))
		case generator.RoleAssistant:
			var parts []genai.Part
			if len(m.Content) > 0 {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, call := range m.ToolCalls {
				args := map[string]any{}
				if len(strings.TrimSpace(call.Arguments)) > 0 {
					if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
						return nil, nil, fmt.Errorf("decode %s arguments: %w", call.Name, err)
					}
				}
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: args})
			}
			if len(parts) > 0 {
				appendParts("model", parts...)
			}
		case generator.RoleTool:
			appendParts("user", genai.FunctionResponse{
				Name:     m.ToolName,
				Response: map[string]any{"content": m.Content},
			})
		default:
			appendParts("user", genai.Text(m.Content))
		}
	}

	return system, history, nil
}

func toSchema(raw map[string]any) *genai.Schema {
	if len(raw) == 0 {
		return nil
	}

	schema := &genai.Schema{}

	if desc, ok := raw["description"].(string); ok {
		schema.Description = desc
	}

	switch raw["type"] {
	case "string":
		schema.Type = genai.TypeString
	case "integer":
		schema.Type = genai.TypeInteger
	case "number":
		schema.Type = genai.TypeNumber
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
		if items, ok := raw["items"].(map[string]any); ok {
			schema.Items = toSchema(items)
		}
	default:
		schema.Type = genai.TypeObject
	}

	if props, ok := raw["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if p, ok := prop.(map[string]any); ok {
				schema.Properties[name] = toSchema(p)
			}
		}
	}

	switch req := raw["required"].(type) {
	case []string:
		schema.Required = req
	case []any:
		for _, item := range req {
			if s, ok := item.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	return schema
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		panic(err)
	}

	g.client = client

	return g
}
