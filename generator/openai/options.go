package openai

import (
	"context"

	"github.com/w-h-a/factfinder/generator"
)

type chatClientKey struct{}

func WithChatClient(client ChatClient) generator.Option {
	return func(o *generator.Options) {
		o.Context = context.WithValue(o.Context, chatClientKey{}, client)
	}
}

func ChatClientFrom(ctx context.Context) (ChatClient, bool) {
	client, ok := ctx.Value(chatClientKey{}).(ChatClient)
	return client, ok
}
