package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/reviewlens/internal/models"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests

	classificationPrompt = `You are a sentiment classifier for product reviews written in any language.
Classify the review as "positive" or "negative". There is no neutral class.
Reply with a JSON object {"label": "positive" | "negative", "score": <probability of that label between 0 and 1>}.`
)

type OpenAIClient struct {
	Client *openai.Client
	model  string
}

// NewOpenAIClient builds a client for model. baseURL may be empty to use the public API.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: openAIRequestTimeout,
	}

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.String("model", model),
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClient{
		Client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Classify asks the chat model for a binary sentiment label and its probability.
func (o *OpenAIClient) Classify(ctx context.Context, text string) (models.OpenAIClassification, error) {
	var result models.OpenAIClassification
	start := time.Now()

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		MaxTokens:   openAIMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classificationPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		slog.Warn("[OpenAIClient] Failed to get a response from OpenAI",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return result, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, errors.New("openai returned no choices")
	}

	content := cleanOpenAIResponse(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal classification: %w", err)
	}
	result.Label = strings.ToLower(strings.TrimSpace(result.Label))

	slog.Debug("[OpenAIClient] Classification request successful",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// cleanOpenAIResponse strips markdown code fences some models wrap JSON in.
func cleanOpenAIResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
