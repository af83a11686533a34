package inference

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"pirizgpt/internal/config"
	"pirizgpt/internal/domain/chat"
	"pirizgpt/internal/infrastructure/logger"
	"pirizgpt/internal/utils/platformerrors"
)

const streamChannelBuffer = 32

// OpenAIGateway talks to an OpenAI-compatible completion endpoint. Model id,
// credential and base URL are fixed at construction for the process
// lifetime; it is not reconfigurable per request.
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

var _ chat.CompletionGateway = (*OpenAIGateway)(nil)

// NewOpenAIGateway builds the gateway from the process configuration. A
// missing credential is tolerated here; calls fail when first used.
func NewOpenAIGateway(cfg *config.Config) *OpenAIGateway {
	clientConfig := openai.DefaultConfig(cfg.ModelAPIKey)
	if cfg.ModelBaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.ModelBaseURL, "/")
	}
	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.ModelID,
	}
}

// Complete implements chat.CompletionGateway.
func (g *OpenAIGateway) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, g.request(prompt))
	if err != nil {
		return "", platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion returned no choices", nil)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion returned empty text", nil)
	}
	return text, nil
}

// CompleteStream implements chat.CompletionGateway. The returned channel
// yields each non-empty fragment as it arrives from the provider, then one
// terminal Done or Err event, and closes.
func (g *OpenAIGateway) CompleteStream(ctx context.Context, prompt string) (<-chan chat.StreamEvent, error) {
	stream, err := g.client.CreateChatCompletionStream(ctx, g.request(prompt))
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed", err)
	}

	events := make(chan chat.StreamEvent, streamChannelBuffer)
	go func() {
		defer close(events)
		defer func() {
			if closeErr := stream.Close(); closeErr != nil {
				log := logger.GetLogger()
				log.Error().Err(closeErr).Msg("unable to close completion stream")
			}
		}()

		for {
			resp, recvErr := stream.Recv()
			if errors.Is(recvErr, io.EOF) {
				events <- chat.StreamEvent{Done: true}
				return
			}
			if recvErr != nil {
				events <- chat.StreamEvent{Err: platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion stream interrupted", recvErr)}
				return
			}

			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case events <- chat.StreamEvent{Text: choice.Delta.Content}:
				case <-ctx.Done():
					events <- chat.StreamEvent{Err: platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion stream cancelled", ctx.Err())}
					return
				}
			}
		}
	}()

	return events, nil
}

func (g *OpenAIGateway) request(prompt string) openai.ChatCompletionRequest {
	// Each message is forwarded on its own; prior turns are never included.
	return openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
}
