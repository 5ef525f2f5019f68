package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseToolArguments decodes the JSON arguments of a tool call. A bare string
// that is not JSON is passed through as {"input": raw}.
func parseToolArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	if strings.HasPrefix(raw, "{") {
		var payload map[string]any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("could not parse tool arguments %q: %w", raw, err)
		}
		return payload, nil
	}

	if strings.HasPrefix(raw, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			return nil, fmt.Errorf("could not parse tool arguments %q: %w", raw, err)
		}
		return map[string]any{"items": arr}, nil
	}

	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return map[string]any{"input": s}, nil
	}

	return map[string]any{"input": raw}, nil
}
