package http

import (
	"context"
	"net/http"
	"time"

	"github.com/w-h-a/factfinder/server"
)

type middlewareKey struct{}

// WithMiddleware wraps the handler; the first middleware is the outermost.
func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

type readHeaderTimeoutKey struct{}

func WithReadHeaderTimeout(d time.Duration) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, readHeaderTimeoutKey{}, d)
	}
}

func ReadHeaderTimeoutFrom(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(readHeaderTimeoutKey{}).(time.Duration)
	return d, ok
}
