package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const hugotPositiveLabel = "LABEL_1"

// HugotBackend runs a Hugging Face text-classification model locally.
type HugotBackend struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// NewHugotBackend loads model from modelDir, downloading it first when absent.
// Loading is slow; build one backend per process.
func NewHugotBackend(model, modelDir string) (*HugotBackend, error) {
	start := time.Now()

	modelPath, err := ensureModel(model, modelDir)
	if err != nil {
		return nil, err
	}

	session, err := newHugotSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "reviewSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("failed to initialize text classification pipeline: %w", err)
	}

	slog.Info("[HugotBackend] Model loaded",
		slog.String("model", model),
		slog.String("path", modelPath),
		slog.Duration("elapsed", time.Since(start)))

	return &HugotBackend{session: session, pipeline: pipeline}, nil
}

func ensureModel(model, modelDir string) (string, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(model, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		slog.Info("[HugotBackend] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	}

	slog.Info("[HugotBackend] Model not found, downloading...", slog.String("model", model))
	downloaded, err := hugot.DownloadModel(model, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model %s: %w", model, err)
	}
	slog.Info("[HugotBackend] Model downloaded successfully", slog.String("path", downloaded))
	return downloaded, nil
}

func (h *HugotBackend) Predict(_ context.Context, text string) (Prediction, error) {
	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return Prediction{}, err
	}
	if len(output.ClassificationOutputs) == 0 {
		return Prediction{}, ErrNoPrediction
	}

	return topPrediction(output.ClassificationOutputs[0],
		func(c pipelines.ClassificationOutput) string { return c.Label },
		func(c pipelines.ClassificationOutput) float64 { return float64(c.Score) })
}

func (h *HugotBackend) PositiveLabel() string {
	return hugotPositiveLabel
}

func (h *HugotBackend) Close() error {
	if h.session == nil {
		return nil
	}
	return h.session.Destroy()
}
