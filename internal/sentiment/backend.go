package sentiment

import (
	"fmt"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/clients"
)

// NewBackend builds the backend selected by cfg.Backend.
func NewBackend(cfg config.SentimentConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendHugot:
		backend, err := NewHugotBackend(cfg.Model, cfg.ModelDir)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.BackendHuggingFace:
		client := clients.NewHuggingFaceClient(cfg.HFInferenceURL, cfg.HFAPIToken, cfg.HFTimeout)
		return NewHuggingFaceBackend(client), nil
	case config.BackendOpenAI:
		client := clients.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
		return NewOpenAIBackend(client), nil
	case config.BackendVader:
		return NewVaderBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported sentiment backend %q", cfg.Backend)
	}
}

// NewAnalyzerFromConfig builds the backend and wraps it in an Analyzer.
func NewAnalyzerFromConfig(cfg config.SentimentConfig) (*Analyzer, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(backend, cfg.PositiveLabel), nil
}
