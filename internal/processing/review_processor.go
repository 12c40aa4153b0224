package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

var (
	ErrEmptyContent   = errors.New("content must not be empty")
	ErrClassification = errors.New("classification failed")
	ErrStorage        = errors.New("storage failed")
)

type Classifier interface {
	Analyze(ctx context.Context, text string) (sentiment.Result, error)
}

type Store interface {
	Insert(ctx context.Context, record *models.Review) error
}

type Invalidator interface {
	Invalidate(ctx context.Context)
}

// ReviewProcessor is the single-review path behind POST /reviews/analyze.
type ReviewProcessor struct {
	classifier  Classifier
	store       Store
	invalidator Invalidator
}

// NewReviewProcessor wires the classifier and store. invalidator may be nil.
func NewReviewProcessor(classifier Classifier, store Store, invalidator Invalidator) *ReviewProcessor {
	return &ReviewProcessor{
		classifier:  classifier,
		store:       store,
		invalidator: invalidator,
	}
}

// Analyze classifies content and stores it. The returned review carries the
// id and timestamp assigned by the store.
func (p *ReviewProcessor) Analyze(ctx context.Context, content string) (models.Review, error) {
	if strings.TrimSpace(content) == "" {
		return models.Review{}, ErrEmptyContent
	}

	start := time.Now()
	result, err := p.classifier.Analyze(ctx, content)
	if err != nil {
		slog.Error("[ReviewProcessor] Failed to classify review", slog.String("error", err.Error()))
		return models.Review{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	review := models.Review{
		Content:    content,
		Sentiment:  result.Sentiment,
		Confidence: result.Confidence,
	}
	if err := p.store.Insert(ctx, &review); err != nil {
		slog.Error("[ReviewProcessor] Failed to store review", slog.String("error", err.Error()))
		return models.Review{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if p.invalidator != nil {
		p.invalidator.Invalidate(ctx)
	}

	slog.Debug("[ReviewProcessor] Review analyzed",
		slog.Int64("id", review.ID),
		slog.String("sentiment", string(review.Sentiment)),
		slog.Float64("confidence", review.Confidence),
		slog.Duration("duration", time.Since(start)))
	return review, nil
}
