package sentiment

import (
	"context"

	"github.com/spacesedan/reviewlens/internal/clients"
	"github.com/spacesedan/reviewlens/internal/models"
)

const openAIPositiveLabel = "positive"

// HuggingFaceBackend delegates to a hosted inference endpoint.
type HuggingFaceBackend struct {
	client *clients.HuggingFaceClient
}

func NewHuggingFaceBackend(client *clients.HuggingFaceClient) *HuggingFaceBackend {
	return &HuggingFaceBackend{client: client}
}

func (h *HuggingFaceBackend) Predict(ctx context.Context, text string) (Prediction, error) {
	result, err := h.client.Classify(ctx, text)
	if err != nil {
		return Prediction{}, err
	}
	return topPrediction(result,
		func(c models.HFClassification) string { return c.Label },
		func(c models.HFClassification) float64 { return c.Score })
}

func (h *HuggingFaceBackend) PositiveLabel() string {
	return hugotPositiveLabel
}

func (h *HuggingFaceBackend) Close() error {
	h.client.Client.CloseIdleConnections()
	return nil
}

// OpenAIBackend asks a chat model for the label.
type OpenAIBackend struct {
	client *clients.OpenAIClient
}

func NewOpenAIBackend(client *clients.OpenAIClient) *OpenAIBackend {
	return &OpenAIBackend{client: client}
}

func (o *OpenAIBackend) Predict(ctx context.Context, text string) (Prediction, error) {
	result, err := o.client.Classify(ctx, text)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Label: result.Label, Score: result.Score}, nil
}

func (o *OpenAIBackend) PositiveLabel() string {
	return openAIPositiveLabel
}

func (o *OpenAIBackend) Close() error {
	return nil
}
