package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/util"
	"pharmtrain_backend/pkg/logger"
	"pharmtrain_backend/pkg/monitoring"
	"pharmtrain_backend/pkg/tracing"
)

const (
	insightSystemPrompt = "You are a training advisor for a retail and hospital pharmacy. " +
		"You receive a JSON summary of pharmacy technician training results. " +
		"Reply with at most five short, concrete suggestions for the pharmacy manager. " +
		"Plain text only, no links."

	consultantSystemPrompt = "You are a consultant for pharmacy technicians in training. " +
		"Answer questions about pharmacy operations, medication safety, compounding and regulations clearly and briefly. " +
		"When a question needs a pharmacist's clinical judgement, say so. " +
		"Refuse topics unrelated to pharmacy work."
)

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AIService talks to an OpenAI-compatible chat completions endpoint.
type AIService struct {
	config config.AIConfig
	client *resty.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout())
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &AIService{config: cfg, client: client}
}

func (s *AIService) Enabled() bool {
	return s.config.BaseURL != ""
}

// Chat sends one completion request and returns the first choice's text.
func (s *AIService) Chat(ctx context.Context, system string, history []AIChatMessage, prompt string) (string, error) {
	if !s.Enabled() {
		monitoring.AIRequests.WithLabelValues("disabled").Inc()
		return "", util.ErrInsightUnavailable
	}

	ctx, span := tracing.Tracer().Start(ctx, "ai.chat_completion")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", s.config.Model), attribute.Int("ai.history", len(history)))

	messages := make([]AIChatMessage, 0, len(history)+2)
	messages = append(messages, AIChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	start := time.Now()
	var out ChatCompletionResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(ChatCompletionRequest{Model: s.config.Model, Messages: messages}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	monitoring.AIRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		monitoring.AIRequests.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return "", fmt.Errorf("%w: %v", util.ErrInsightUnavailable, err)
	}

	if resp.IsError() {
		monitoring.AIRequests.WithLabelValues("error").Inc()
		span.SetStatus(codes.Error, resp.Status())
		detail := resp.Status()
		if out.Error != nil && out.Error.Message != "" {
			detail = out.Error.Message
		}
		logger.Log.Warn("AI API returned an error", zap.Int("status", resp.StatusCode()), zap.String("detail", detail))
		return "", fmt.Errorf("%w: status %d", util.ErrInsightUnavailable, resp.StatusCode())
	}

	text := ""
	if len(out.Choices) > 0 {
		text = strings.TrimSpace(out.Choices[0].Message.Content)
	}
	if text == "" {
		monitoring.AIRequests.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("%w: empty reply", util.ErrInsightUnavailable)
	}

	monitoring.AIRequests.WithLabelValues("success").Inc()
	return text, nil
}

// Insight asks for manager-facing suggestions about a team summary.
func (s *AIService) Insight(ctx context.Context, summary []byte) (string, error) {
	return s.Chat(ctx, insightSystemPrompt, nil, string(summary))
}

// Consult answers a technician's question with the prior conversation as context.
func (s *AIService) Consult(ctx context.Context, history []AIChatMessage, question string) (string, error) {
	return s.Chat(ctx, consultantSystemPrompt, history, question)
}
