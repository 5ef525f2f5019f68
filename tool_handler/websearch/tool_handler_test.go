package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
	"github.com/w-h-a/factfinder/tool_handler/websearch"
)

func TestInvokeCapsResults(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"1","url":"https://a","content":"ИТМО"},
			{"title":"2","url":"https://b","content":"b"},
			{"title":"3","content":"no url"},
			{"title":"4","url":"https://d","content":"d"}
		]}`))
	}))
	defer srv.Close()

	th := websearch.NewToolHandler(
		toolhandler.WithApiKey("key"),
		toolhandler.WithLocation(srv.URL),
	)

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{
		Arguments: map[string]any{"query": "факультеты ИТМО"},
	})
	require.NoError(t, err)
	require.Len(t, rsp.Results, websearch.DefaultMaxResults)
	require.Equal(t, "https://a", rsp.Results[0].URL)
	require.Empty(t, rsp.Results[2].URL)
	require.Contains(t, rsp.Content, "ИТМО")

	require.Equal(t, "факультеты ИТМО", got["query"])
	require.Equal(t, "key", got["api_key"])
	require.EqualValues(t, websearch.DefaultMaxResults, got["max_results"])
}

func TestInvokeRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"url":"https://a"}]}`))
	}))
	defer srv.Close()

	th := websearch.NewToolHandler(
		toolhandler.WithApiKey("key"),
		toolhandler.WithLocation(srv.URL),
		websearch.WithBackoff(time.Millisecond),
	)

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{
		Arguments: map[string]any{"query": "q"},
	})
	require.NoError(t, err)
	require.Len(t, rsp.Results, 1)
	require.EqualValues(t, 2, calls.Load())
}

func TestInvokeGivesUpWhenAlwaysRateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	th := websearch.NewToolHandler(
		toolhandler.WithApiKey("key"),
		toolhandler.WithLocation(srv.URL),
		websearch.WithBackoff(time.Millisecond),
	)

	_, err := th.Invoke(context.Background(), toolhandler.ToolRequest{
		Arguments: map[string]any{"query": "q"},
	})
	require.EqualError(t, err, "tavily http 429")
	require.EqualValues(t, websearch.MaxAttempts, calls.Load())
}

func TestInvokeFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	th := websearch.NewToolHandler(
		toolhandler.WithApiKey("key"),
		toolhandler.WithLocation(srv.URL),
	)

	_, err := th.Invoke(context.Background(), toolhandler.ToolRequest{
		Arguments: map[string]any{"query": "q"},
	})
	require.EqualError(t, err, "tavily http 500")
}

func TestInvokeRequiresApiKey(t *testing.T) {
	th := websearch.NewToolHandler()

	_, err := th.Invoke(context.Background(), toolhandler.ToolRequest{
		Arguments: map[string]any{"query": "q"},
	})
	require.EqualError(t, err, "tavily: API key is missing")
}

func TestSpec(t *testing.T) {
	spec := websearch.NewToolHandler().Spec()
	require.Equal(t, websearch.Name, spec.Name)
	require.Equal(t, toolhandler.KindWebSearch, spec.Kind)
}
