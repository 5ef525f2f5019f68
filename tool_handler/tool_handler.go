package toolhandler

import "context"

type ToolHandler interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

type ToolRequest struct {
	Arguments map[string]any
}

type ToolResponse struct {
	Content string
	Queries []string
	Results []SearchResult
}

type SearchResult struct {
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url,omitempty"`
	Content string  `json:"content,omitempty"`
	Score   float64 `json:"score,omitempty"`
}
