package encyclopedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	toolhandler "github.com/w-h-a/factfinder/tool_handler"
	getsafe "github.com/w-h-a/factfinder/util/get_safe"
)

const (
	Name = "Wikipedia"

	DefaultLocation   = "https://ru.wikipedia.org"
	DefaultMaxResults = 3

	maxContentChars = 4000
	noResult        = "No good Wikipedia Search Result was found"
	userAgent       = "factfinder/1.0 (https://github.com/w-h-a/factfinder)"
)

type wikipediaToolHandler struct {
	options toolhandler.Options
	client  *http.Client
}

type page struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
	Index   int    `json:"index"`
}

func (th *wikipediaToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name: Name,
		Kind: toolhandler.KindEncyclopedia,
		Description: `Useful for:
    - General knowledge questions
    - Historical facts
    - Scientific concepts
    - Biographical information
    - Cultural references`,
		InputSchema: toolhandler.ObjectSchema(map[string]any{
			"query": toolhandler.StringProperty("Encyclopedia search terms"),
		}, "query"),
	}
}

func (th *wikipediaToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	query := getsafe.String(req.Arguments, "query")
	if len(query) == 0 {
		query = getsafe.String(req.Arguments, "input")
	}
	if len(query) == 0 {
		return toolhandler.ToolResponse{}, fmt.Errorf("missing 'query' argument")
	}

	pages, err := th.lookup(ctx, query)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	if len(pages) == 0 {
		return toolhandler.ToolResponse{Content: noResult}, nil
	}

	summaries := make([]string, 0, len(pages))
	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		if len(p.Extract) == 0 {
			continue
		}
		summaries = append(summaries, fmt.Sprintf("Page: %s\nSummary: %s", p.Title, p.Extract))
		if len(p.FullURL) > 0 {
			urls = append(urls, p.FullURL)
		}
	}

	if len(summaries) == 0 {
		return toolhandler.ToolResponse{Content: noResult}, nil
	}

	content := strings.Join(summaries, "\n\n")
	if r := []rune(content); len(r) > maxContentChars {
		content = string(r[:maxContentChars])
	}

	return toolhandler.ToolResponse{
		Content: FormatSources(content, urls),
	}, nil
}

func (th *wikipediaToolHandler) lookup(ctx context.Context, query string) ([]page, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrlimit", fmt.Sprintf("%d", th.options.MaxResults))
	params.Set("prop", "extracts|info")
	params.Set("inprop", "url")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("exlimit", "max")

	endpoint := strings.TrimRight(th.options.Location, "/") + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	rsp, err := th.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia http %d", rsp.StatusCode)
	}

	var body struct {
		Query struct {
			Pages []page `json:"pages"`
		} `json:"query"`
	}
	if err := json.NewDecoder(rsp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode wikipedia response: %w", err)
	}

	pages := body.Query.Pages
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	if len(pages) > th.options.MaxResults {
		pages = pages[:th.options.MaxResults]
	}

	return pages, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	if len(options.Location) == 0 {
		options.Location = DefaultLocation
	}

	if options.MaxResults <= 0 {
		options.MaxResults = DefaultMaxResults
	}

	th := &wikipediaToolHandler{
		options: options,
		client:  options.HTTPClient,
	}

	if th.client == nil {
		th.client = &http.Client{Timeout: 15 * time.Second}
	}

	return th
}
