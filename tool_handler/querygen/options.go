package querygen

import (
	"context"

	toolhandler "github.com/w-h-a/factfinder/tool_handler"
)

type separatorKey struct{}

// WithSeparator overrides the delimiter used to split the model's reply into
// queries.
func WithSeparator(sep string) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, separatorKey{}, sep)
	}
}

func SeparatorFrom(ctx context.Context) (string, bool) {
	sep, ok := ctx.Value(separatorKey{}).(string)
	return sep, ok
}
