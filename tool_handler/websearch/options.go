package websearch

import (
	"context"
	"time"

	toolhandler "github.com/w-h-a/factfinder/tool_handler"
)

type backoffKey struct{}

// WithBackoff sets the first wait after a 429; later waits double.
func WithBackoff(d time.Duration) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, backoffKey{}, d)
	}
}

func BackoffFrom(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(backoffKey{}).(time.Duration)
	return d, ok
}
