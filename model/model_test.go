package model_test

import (
	"context"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/factfinder/generator"
	"github.com/w-h-a/factfinder/generator/openai"
	"github.com/w-h-a/factfinder/model"
)

type captureClient struct {
	req goopenai.ChatCompletionRequest
}

func (c *captureClient) CreateChatCompletion(_ context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	c.req = req
	return goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{{Message: goopenai.ChatCompletionMessage{Content: "ok"}}},
	}, nil
}

func TestLoadModelPinsModelName(t *testing.T) {
	client := &captureClient{}

	g := model.LoadModel(
		generator.WithModel("something-else"),
		openai.WithChatClient(client),
	)

	_, err := g.Chat(context.Background(), []generator.Message{generator.UserMessage("ping")})
	require.NoError(t, err)
	require.Equal(t, model.Name, client.req.Model)
}
