package query

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Answer is the success shape of the envelope.
type Answer struct {
	Id        any      `json:"id"`
	Answer    any      `json:"answer"`
	Reasoning any      `json:"reasoning"`
	Sources   []string `json:"sources"`
}

// Failure is the error shape of the envelope.
type Failure struct {
	Id    any    `json:"id"`
	Error string `json:"error"`
}

// Marshal encodes v without escaping non-ASCII or HTML characters and without
// a trailing newline.
func Marshal(v any) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return "", err
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ResolveId returns raw as the envelope id, or a random UUID when raw is
// absent or JSON null.
func ResolveId(raw json.RawMessage) any {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return uuid.NewString()
	}
	return raw
}
