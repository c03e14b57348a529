package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/envutil"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

type CompletionMessage struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	System    string
	Messages  []CompletionMessage
	MaxTokens int
}

type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// CoachAI is the narrow AI-completion contract the rest of the backend
// depends on. The model call itself is an external collaborator.
type CoachAI interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Stream(ctx context.Context, req CompletionRequest, onDelta func(delta string)) (*CompletionResponse, error)
}

type openaiCoach struct {
	log    *logger.Logger
	client *openai.Client
	model  string
}

func NewOpenAICoach(log *logger.Logger, apiKey string) (CoachAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	cfg := openai.DefaultConfig(apiKey)
	if base := envutil.Str("OPENAI_BASE_URL", ""); base != "" {
		cfg.BaseURL = base
	}
	return &openaiCoach{
		log:    log.With("service", "CoachAI"),
		client: openai.NewClientWithConfig(cfg),
		model:  envutil.Str("OPENAI_MODEL", openai.GPT4oMini),
	}, nil
}

func (c *openaiCoach) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  c.toMessages(req),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, apperr.New(apperr.KindUpstream, fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.Newf(apperr.KindUpstream, "chat completion returned no choices")
	}
	return &CompletionResponse{
		Content:    resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func (c *openaiCoach) Stream(ctx context.Context, req CompletionRequest, onDelta func(delta string)) (*CompletionResponse, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  c.toMessages(req),
		MaxTokens: req.MaxTokens,
		Stream:    true,
	})
	if err != nil {
		return nil, apperr.New(apperr.KindUpstream, fmt.Errorf("open stream: %w", err))
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.New(apperr.KindUpstream, fmt.Errorf("stream recv: %w", err))
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			full.WriteString(choice.Delta.Content)
			if onDelta != nil {
				onDelta(choice.Delta.Content)
			}
		}
	}
	return &CompletionResponse{Content: full.String(), Model: c.model}, nil
}

func (c *openaiCoach) toMessages(req CompletionRequest) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := m.Role
		if role == "coach" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}
