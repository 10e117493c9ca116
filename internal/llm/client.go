package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ai-interviewer/backend/internal/metrics"
	"github.com/ai-interviewer/backend/pkg/circuitbreaker"
	"github.com/ai-interviewer/backend/pkg/logger"
	"github.com/ai-interviewer/backend/pkg/retry"
)

// Message roles accepted by the gateway.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

type CompletionResponse struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Gateway is the language-model collaborator. Implementations must be safe
// for concurrent use; both calls block until generation finishes.
type Gateway interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Stream delivers generated text as ordered fragments through onFragment.
	// The returned text is the full concatenation of every fragment. An error
	// from onFragment stops delivery but not generation.
	Stream(ctx context.Context, req CompletionRequest, onFragment func(fragment string) error) (string, error)
}

// Client is the go-openai backed Gateway with retry and a circuit breaker
// around every call.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.Breaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	if timeoutSec == 0 {
		timeoutSec = 60
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func (c *Client) chatRequest(req CompletionRequest, stream bool) openai.ChatCompletionRequest {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      stream,
	}
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.LLMRequestDuration.WithLabelValues("complete"))
	defer timer.ObserveDuration()

	var result *CompletionResponse

	err := c.cb.Execute(ctx, func() error {
		resp, rerr := retry.DoWithResult(ctx, c.retryConfig, func() (*CompletionResponse, error) {
			resp, err := c.client.CreateChatCompletion(ctx, c.chatRequest(req, false))
			if err != nil {
				return nil, fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return nil, errors.New("completion returned no choices")
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))

			return &CompletionResponse{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}, nil
		})
		if rerr != nil {
			return rerr
		}
		result = resp
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Stream yields fragments in generation order. Generation is drained to the
// end even when onFragment fails, so the caller always gets the full text a
// subscriber may have missed.
func (c *Client) Stream(ctx context.Context, req CompletionRequest, onFragment func(fragment string) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.LLMRequestDuration.WithLabelValues("stream"))
	defer timer.ObserveDuration()

	var full string

	err := c.cb.Execute(ctx, func() error {
		stream, err := c.client.CreateChatCompletionStream(ctx, c.chatRequest(req, true))
		if err != nil {
			return fmt.Errorf("failed to open completion stream: %w", err)
		}
		defer stream.Close()

		full = ""
		deliver := onFragment

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to receive stream chunk: %w", err)
			}
			if len(chunk.Choices) == 0 {
				continue
			}

			fragment := chunk.Choices[0].Delta.Content
			if fragment == "" {
				continue
			}

			full += fragment
			if deliver != nil {
				if err := deliver(fragment); err != nil {
					logger.Warn("Stream subscriber gone, draining generation", zap.Error(err))
					deliver = nil
				}
			}
		}
	})

	if err != nil {
		return "", err
	}
	return full, nil
}
