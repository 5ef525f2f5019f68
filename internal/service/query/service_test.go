package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/factfinder/internal/service/agent"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
)

type fakeRunner struct {
	result agent.Result
	err    error
	input  string
}

func (f *fakeRunner) Run(_ context.Context, input string) (agent.Result, error) {
	f.input = input
	return f.result, f.err
}

func webStep(urls ...string) agent.Step {
	results := make([]toolhandler.SearchResult, 0, len(urls))
	for _, u := range urls {
		results = append(results, toolhandler.SearchResult{URL: u})
	}
	return agent.Step{
		Action:      agent.Action{Tool: "tavily_search_results_json", Kind: toolhandler.KindWebSearch},
		Observation: toolhandler.ToolResponse{Results: results},
	}
}

func TestProcessQueryNoToolCalls(t *testing.T) {
	runner := &fakeRunner{result: agent.Result{Output: `{"answer_number": 42, "reasoning": "because"}`}}

	out, err := New(runner).ProcessQuery(context.Background(), "вопрос", "id-1")
	require.NoError(t, err)
	require.Equal(t, `{"id":"id-1","answer":42,"reasoning":"because","sources":[]}`, out)
	require.Equal(t, "вопрос", runner.input)
}

func TestProcessQueryAgentFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("dial tcp: connection refused")}

	out, err := New(runner).ProcessQuery(context.Background(), "q", 7)
	require.NoError(t, err)
	require.Equal(t, `{"id":7,"error":"Agent execution failed: dial tcp: connection refused"}`, out)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	require.NotContains(t, decoded, "answer")
}

func TestProcessQueryMalformedAnswer(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "not json", output: "Ответ: 3"},
		{name: "not an object", output: `[1, 2]`},
		{name: "missing answer_number", output: `{"reasoning": "r"}`},
		{name: "missing reasoning", output: `{"answer_number": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: agent.Result{Output: tt.output}}

			out, err := New(runner).ProcessQuery(context.Background(), "q", "id")
			require.ErrorIs(t, err, ErrMalformedAnswer)
			require.Empty(t, out)
		})
	}
}

func TestProcessQueryKeepsCyrillicUnescaped(t *testing.T) {
	runner := &fakeRunner{result: agent.Result{
		Output: `{"answer_number": null, "reasoning": "Университет ИТМО основан в 1900 году <см. источник>"}`,
		Steps:  []agent.Step{webStep("https://itmo.ru/ru/page?a=1&b=2")},
	}}

	out, err := New(runner).ProcessQuery(context.Background(), "q", "ru")
	require.NoError(t, err)
	require.Equal(t,
		`{"id":"ru","answer":null,"reasoning":"Университет ИТМО основан в 1900 году <см. источник>","sources":["https://itmo.ru/ru/page?a=1&b=2"]}`,
		out,
	)
}

func TestProcessQueryDecodesEscapedCyrillic(t *testing.T) {
	runner := &fakeRunner{result: agent.Result{
		Output: `{"answer_number": 1, "reasoning": "\u0418\u0422\u041c\u041e"}`,
	}}

	out, err := New(runner).ProcessQuery(context.Background(), "q", "id")
	require.NoError(t, err)
	require.Equal(t, `{"id":"id","answer":1,"reasoning":"ИТМО","sources":[]}`, out)
}

func TestProcessQueryASCIIMatchesStandardEncoder(t *testing.T) {
	tests := []struct {
		name   string
		output string
		answer any
		reason string
	}{
		{
			name:   "compact",
			output: `{"answer_number": 2, "reasoning": "plain"}`,
			answer: 2,
			reason: "plain",
		},
		{
			name:   "whitespace and escapes",
			output: "{\n  \"reasoning\" : \"a \\u0026 b\\/c\",\n  \"answer_number\" :  2.50\n}\n",
			answer: json.Number("2.50"),
			reason: "a & b/c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: agent.Result{
				Output: tt.output,
				Steps:  []agent.Step{webStep("a", "b")},
			}}

			out, err := New(runner).ProcessQuery(context.Background(), "q", "x")
			require.NoError(t, err)

			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			require.NoError(t, enc.Encode(struct {
				Id        string   `json:"id"`
				Answer    any      `json:"answer"`
				Reasoning string   `json:"reasoning"`
				Sources   []string `json:"sources"`
			}{"x", tt.answer, tt.reason, []string{"a", "b"}}))

			require.Equal(t, strings.TrimSuffix(buf.String(), "\n"), out)
		})
	}
}

func TestProcessQueryRejectsTrailingData(t *testing.T) {
	runner := &fakeRunner{result: agent.Result{Output: `{"answer_number": 1, "reasoning": "r"} extra`}}

	_, err := New(runner).ProcessQuery(context.Background(), "q", "id")
	require.ErrorIs(t, err, ErrMalformedAnswer)
}

func TestProcessQueryCollectsSourcesAcrossTools(t *testing.T) {
	runner := &fakeRunner{result: agent.Result{
		Output: `{"answer_number": 1, "reasoning": "r"}`,
		Steps: []agent.Step{
			{
				Action:      agent.Action{Tool: "search_query_generator", Kind: toolhandler.KindSearchQueryGenerator},
				Observation: toolhandler.ToolResponse{Content: `["https://not-a-source"]`, Queries: []string{"https://not-a-source"}},
			},
			webStep("a", "b"),
			webStep("b", "c"),
		},
	}}

	out, err := New(runner).ProcessQuery(context.Background(), "q", "id")
	require.NoError(t, err)

	var decoded Answer
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, decoded.Sources)
}
