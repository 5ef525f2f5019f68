package generator

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Generator interface {
	Chat(ctx context.Context, messages []Message, opts ...ChatOption) (Reply, error)
}

type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallId string
	ToolName   string
}

type ToolCall struct {
	Id        string
	Name      string
	Arguments string
}

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(reply Reply) Message {
	return Message{Role: RoleAssistant, Content: reply.Content, ToolCalls: reply.ToolCalls}
}

func ToolMessage(call ToolCall, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallId: call.Id, ToolName: call.Name}
}
