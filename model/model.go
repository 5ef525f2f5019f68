// Package model binds the default chat generator to the fixed model and
// endpoint the agent runs against.
package model

import (
	"os"

	"github.com/w-h-a/factfinder/generator"
	"github.com/w-h-a/factfinder/generator/openai"
)

const (
	Name    = "deepseek-chat"
	BaseURL = "https://api.aitunnel.ru/v1/"

	ApiKeyEnv = "OPENAI_API_KEY"
)

// LoadModel returns a generator bound to Name at BaseURL. Nothing is dialed
// until the first call. Options may tune transport settings such as the
// timeout, but the model and endpoint always win.
func LoadModel(opts ...generator.Option) generator.Generator {
	all := append([]generator.Option{generator.WithApiKey(os.Getenv(ApiKeyEnv))}, opts...)
	all = append(all,
		generator.WithModel(Name),
		generator.WithBaseURL(BaseURL),
	)
	return openai.NewGenerator(all...)
}
