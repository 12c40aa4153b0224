package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/sentiment"
	"github.com/spacesedan/reviewlens/internal/utils"
)

type Classifier interface {
	Analyze(ctx context.Context, text string) (sentiment.Result, error)
}

type Store interface {
	InsertMany(ctx context.Context, records []models.Review) error
}

// Invalidator is told after every successful flush, so cached analytics
// never outlive the data they summarize.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Row is one line of the source file: rating<TAB>review text.
type Row struct {
	Index  int
	Rating string
	Text   string
}

// Report summarizes a run. Persisted equals Classified unless a flush failed,
// in which case Dropped holds the reviews that were lost with it.
type Report struct {
	Read          int
	Classified    int
	Failed        int
	Persisted     int
	Dropped       int
	Flushes       int
	FlushSizes    []int
	FailedFlushes int
	Elapsed       time.Duration
}

type Importer struct {
	classifier    Classifier
	store         Store
	invalidator   Invalidator
	batchSize     int
	progressEvery int
}

type Option func(*Importer)

func WithBatchSize(size int) Option {
	return func(im *Importer) {
		im.batchSize = size
	}
}

// WithProgressEvery logs progress every n rows; 0 disables it.
func WithProgressEvery(n int) Option {
	return func(im *Importer) {
		im.progressEvery = n
	}
}

func WithInvalidator(inv Invalidator) Option {
	return func(im *Importer) {
		im.invalidator = inv
	}
}

func New(classifier Classifier, store Store, opts ...Option) *Importer {
	im := &Importer{
		classifier: classifier,
		store:      store,
		batchSize:  utils.DEFAULT_BATCH_SIZE,
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.batchSize <= 0 {
		im.batchSize = utils.DEFAULT_BATCH_SIZE
	}
	return im
}

// ImportFile imports the TSV at path. A limit of 0 imports every row.
func (im *Importer) ImportFile(ctx context.Context, path string, limit int) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	slog.Info("[Importer] Reading review file", slog.String("path", path), slog.Int("limit", limit))
	return im.Import(ctx, f, limit)
}

// Import classifies each row of r and stores the successes in transactional
// batches. Rows that fail classification are logged and skipped. A failed
// flush drops that batch, the run continues, and the error is returned at the end.
func (im *Importer) Import(ctx context.Context, r io.Reader, limit int) (Report, error) {
	start := time.Now()
	report := Report{FlushSizes: []int{}}
	buffer := utils.NewBatchBuffer[models.Review](im.batchSize)
	reader := newTSVReader(r)

	var flushErrs []error
	flush := func(ctx context.Context) {
		if err := im.flush(ctx, buffer, &report); err != nil {
			flushErrs = append(flushErrs, err)
		}
	}

	for index := 0; limit <= 0 || index < limit; index++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("[Importer] Context canceled, flushing remaining buffer",
				slog.Int("buffered", buffer.Size()))
			flush(context.WithoutCancel(ctx))
			report.Elapsed = time.Since(start)
			return report, errors.Join(append(flushErrs, err)...)
		}

		row, err := reader.next(index)
		if errors.Is(err, io.EOF) {
			break
		}
		report.Read++

		if err == nil {
			var review models.Review
			review, err = im.classifyRow(ctx, row)
			if err == nil {
				report.Classified++
				buffer.Add(review)
			}
		}
		if err != nil {
			report.Failed++
			slog.Error("[Importer] Skipping row",
				slog.Int("index", index),
				slog.String("error", err.Error()))
		}

		if buffer.Full() {
			flush(ctx)
		}

		if im.progressEvery > 0 && report.Read%im.progressEvery == 0 {
			slog.Info("[Importer] Progress",
				slog.Int("read", report.Read),
				slog.Int("persisted", report.Persisted),
				slog.Int("failed", report.Failed))
		}
	}

	if buffer.HasData() {
		flush(ctx)
	}

	report.Elapsed = time.Since(start)
	slog.Info("[Importer] Import finished",
		slog.Int("read", report.Read),
		slog.Int("classified", report.Classified),
		slog.Int("failed", report.Failed),
		slog.Int("persisted", report.Persisted),
		slog.Int("flushes", report.Flushes),
		slog.Int("failed_flushes", report.FailedFlushes),
		slog.Duration("elapsed", report.Elapsed))

	return report, errors.Join(flushErrs...)
}

func (im *Importer) classifyRow(ctx context.Context, row Row) (models.Review, error) {
	result, err := im.classifier.Analyze(ctx, row.Text)
	if err != nil {
		return models.Review{}, err
	}
	return models.Review{
		Content:    result.Text,
		Sentiment:  result.Sentiment,
		Confidence: result.Confidence,
	}, nil
}

func (im *Importer) flush(ctx context.Context, buffer *utils.BatchBuffer[models.Review], report *Report) error {
	buffer.LogBatchProcessing("reviews")
	batch := buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	if err := im.store.InsertMany(ctx, batch); err != nil {
		report.FailedFlushes++
		report.Dropped += len(batch)
		slog.Error("[Importer] Failed to write batch, dropping it",
			slog.Int("batch_size", len(batch)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to flush %d reviews: %w", len(batch), err)
	}

	report.Flushes++
	report.FlushSizes = append(report.FlushSizes, len(batch))
	report.Persisted += len(batch)

	if im.invalidator != nil {
		im.invalidator.Invalidate(ctx)
	}
	return nil
}

type tsvReader struct {
	csv *csv.Reader
}

func newTSVReader(r io.Reader) *tsvReader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return &tsvReader{csv: reader}
}

// next returns io.EOF at end of input. Any other error belongs to this row only.
func (t *tsvReader) next(index int) (Row, error) {
	record, err := t.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		return Row{Index: index}, fmt.Errorf("failed to parse row: %w", err)
	}
	if len(record) < 2 {
		return Row{Index: index}, fmt.Errorf("expected rating and review columns, got %d", len(record))
	}

	return Row{
		Index:  index,
		Rating: strings.TrimSpace(record[0]),
		// tabs inside the review survive as column splits
		Text: strings.Join(record[1:], "\t"),
	}, nil
}
