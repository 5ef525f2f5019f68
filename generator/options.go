package generator

import (
	"context"
	"time"
)

const (
	DefaultTimeout = 2 * time.Minute
)

type Option func(*Options)

type Options struct {
	ApiKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	MaxTokens    int
	Context      context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		o.BaseURL = baseURL
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Timeout:   DefaultTimeout,
		MaxTokens: 1024,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type ChatOption func(*ChatOptions)

type ChatOptions struct {
	Tools   []ToolDefinition
	Context context.Context
}

func WithTools(tools ...ToolDefinition) ChatOption {
	return func(o *ChatOptions) {
		o.Tools = append(o.Tools, tools...)
	}
}

func NewChatOptions(opts ...ChatOption) ChatOptions {
	options := ChatOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
