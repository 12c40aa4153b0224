package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/reviewlens/internal/models"
)

// MaxInputChars is how much of a review the model ever sees.
const MaxInputChars = 512

var (
	ErrEmptyText    = errors.New("text is empty")
	ErrNoPrediction = errors.New("model returned no prediction")
)

// Prediction is a backend's raw answer: its own label vocabulary and the
// probability of that label.
type Prediction struct {
	Label string
	Score float64
}

// Backend runs the underlying model. Implementations are built once per
// process and must be safe for concurrent Predict calls.
type Backend interface {
	Predict(ctx context.Context, text string) (Prediction, error)
	// PositiveLabel is the raw label this backend uses for the positive class.
	PositiveLabel() string
	Close() error
}

type Result struct {
	// Text is the full input, never truncated.
	Text       string
	Sentiment  models.Sentiment
	Confidence float64
	RawLabel   string
}

type Analyzer struct {
	backend       Backend
	positiveLabel string
}

// NewAnalyzer wraps backend. An empty positiveLabel uses the backend's own.
func NewAnalyzer(backend Backend, positiveLabel string) *Analyzer {
	if positiveLabel == "" {
		positiveLabel = backend.PositiveLabel()
	}
	return &Analyzer{
		backend:       backend,
		positiveLabel: positiveLabel,
	}
}

// Analyze classifies the first MaxInputChars characters of text as positive
// or negative. It does not retry.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}

	prediction, err := a.backend.Predict(ctx, Truncate(text, MaxInputChars))
	if err != nil {
		return Result{}, fmt.Errorf("failed to classify text: %w", err)
	}
	if prediction.Label == "" {
		return Result{}, ErrNoPrediction
	}
	if math.IsNaN(prediction.Score) {
		return Result{}, fmt.Errorf("model returned a NaN score for label %q", prediction.Label)
	}

	label := models.SentimentNegative
	if prediction.Label == a.positiveLabel {
		label = models.SentimentPositive
	}

	return Result{
		Text:       text,
		Sentiment:  label,
		Confidence: formatConfidence(prediction.Score),
		RawLabel:   prediction.Label,
	}, nil
}

func (a *Analyzer) Close() error {
	return a.backend.Close()
}

// Truncate cuts text to at most limit characters without splitting a rune.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}

// formatConfidence clamps to [0,1] and keeps two decimals.
func formatConfidence(score float64) float64 {
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*100) / 100
}

// topPrediction picks the highest scoring entry.
func topPrediction[T any](items []T, label func(T) string, score func(T) float64) (Prediction, error) {
	if len(items) == 0 {
		return Prediction{}, ErrNoPrediction
	}
	best := items[0]
	for _, item := range items[1:] {
		if score(item) > score(best) {
			best = item
		}
	}
	return Prediction{Label: label(best), Score: score(best)}, nil
}
