package toolhandler

// Kind is the closed set of tools the agent can be given. Source extraction
// switches on it rather than on tool names.
type Kind int

const (
	KindSearchQueryGenerator Kind = iota + 1
	KindWebSearch
	KindEncyclopedia
)

func (k Kind) String() string {
	switch k {
	case KindSearchQueryGenerator:
		return "search_query_generator"
	case KindWebSearch:
		return "web_search"
	case KindEncyclopedia:
		return "encyclopedia"
	default:
		return "unknown"
	}
}

type ToolSpec struct {
	Name        string         `json:"name"`
	Kind        Kind           `json:"-"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func StringProperty(description string) map[string]any {
	prop := map[string]any{
		"type": "string",
	}
	if description != "" {
		prop["description"] = description
	}
	return prop
}
