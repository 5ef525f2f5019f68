package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	toolhandler "github.com/w-h-a/factfinder/tool_handler"
	getsafe "github.com/w-h-a/factfinder/util/get_safe"
)

const (
	Name = "tavily_search_results_json"

	DefaultLocation   = "https://api.tavily.com"
	DefaultMaxResults = 3

	// MaxAttempts bounds requests per search while the API answers 429.
	MaxAttempts = 3

	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

type tavilyToolHandler struct {
	options toolhandler.Options
	client  *http.Client
	backoff time.Duration
}

func (th *tavilyToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        Name,
		Kind:        toolhandler.KindWebSearch,
		Description: "A search engine optimized for comprehensive, accurate, and trusted results. Useful for when you need to answer questions about current events. Input should be a search query.",
		InputSchema: toolhandler.ObjectSchema(map[string]any{
			"query": toolhandler.StringProperty("search query to look up"),
		}, "query"),
	}
}

func (th *tavilyToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	query := getsafe.String(req.Arguments, "query")
	if len(query) == 0 {
		query = getsafe.String(req.Arguments, "input")
	}
	if len(query) == 0 {
		return toolhandler.ToolResponse{}, fmt.Errorf("missing 'query' argument")
	}

	results, err := th.search(ctx, query)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	content, err := json.Marshal(results)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.ToolResponse{
		Content: string(content),
		Results: results,
	}, nil
}

func (th *tavilyToolHandler) search(ctx context.Context, query string) ([]toolhandler.SearchResult, error) {
	if len(strings.TrimSpace(th.options.ApiKey)) == 0 {
		return nil, errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"api_key":      th.options.ApiKey,
		"max_results":  th.options.MaxResults,
		"search_depth": "advanced",
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(th.options.Location, "/") + "/search"

	var rsp *http.Response
	delay := th.backoff
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		rsp, err = th.client.Do(req)
		if err != nil {
			return nil, err
		}

		if rsp.StatusCode != http.StatusTooManyRequests || attempt == MaxAttempts {
			break
		}
		rsp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < maxBackoff {
			delay *= 2
		}
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", rsp.StatusCode)
	}

	var body struct {
		Results []toolhandler.SearchResult `json:"results"`
	}
	if err := json.NewDecoder(rsp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	results := body.Results
	if len(results) > th.options.MaxResults {
		results = results[:th.options.MaxResults]
	}

	return results, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	if len(options.Location) == 0 {
		options.Location = DefaultLocation
	}

	if options.MaxResults <= 0 {
		options.MaxResults = DefaultMaxResults
	}

	th := &tavilyToolHandler{
		options: options,
		client:  options.HTTPClient,
		backoff: initialBackoff,
	}

	if d, ok := BackoffFrom(options.Context); ok && d > 0 {
		th.backoff = d
	}

	if th.client == nil {
		th.client = &http.Client{Timeout: 10 * time.Second}
	}

	return th
}
