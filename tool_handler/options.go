package toolhandler

import (
	"context"
	"net/http"

	"github.com/w-h-a/factfinder/generator"
)

type Option func(*Options)

type Options struct {
	Generator  generator.Generator
	ApiKey     string
	Location   string
	MaxResults int
	HTTPClient *http.Client
	Context    context.Context
}

func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithMaxResults(n int) Option {
	return func(o *Options) {
		o.MaxResults = n
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
