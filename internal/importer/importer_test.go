package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewlens/internal/db"
	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InsertMany(ctx context.Context, records []models.Review) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *mockStore) batchSizes() []int {
	var sizes []int
	for _, call := range m.Calls {
		if call.Method == "InsertMany" {
			sizes = append(sizes, len(call.Arguments.Get(1).([]models.Review)))
		}
	}
	return sizes
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.calls++
}

// stubClassifier marks texts containing "bad" negative and fails on "FAIL".
type stubClassifier struct {
	calls  int
	onCall func(n int)
}

func (s *stubClassifier) Analyze(_ context.Context, text string) (sentiment.Result, error) {
	s.calls++
	if s.onCall != nil {
		s.onCall(s.calls)
	}
	if strings.Contains(text, "FAIL") {
		return sentiment.Result{}, errors.New("model unavailable")
	}
	label := models.SentimentPositive
	if strings.Contains(text, "bad") {
		label = models.SentimentNegative
	}
	return sentiment.Result{Text: text, Sentiment: label, Confidence: 0.9, RawLabel: "LABEL_1"}, nil
}

func tsv(n int, fail map[int]bool) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		text := fmt.Sprintf("review number %d", i)
		if fail[i] {
			text = "FAIL " + text
		}
		fmt.Fprintf(&sb, "%d\t%s\n", i%5+1, text)
	}
	return sb.String()
}

func TestImportFlushSizes(t *testing.T) {
	tests := []struct {
		rows  int
		sizes []int
	}{
		{rows: 10, sizes: []int{10}},
		{rows: 11, sizes: []int{10, 1}},
		{rows: 25, sizes: []int{10, 10, 5}},
		{rows: 0, sizes: nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d rows", tt.rows), func(t *testing.T) {
			store := &mockStore{}
			store.On("InsertMany", mock.Anything, mock.Anything).Return(nil)

			report, err := New(&stubClassifier{}, store).Import(context.Background(), strings.NewReader(tsv(tt.rows, nil)), 0)
			require.NoError(t, err)

			assert.Equal(t, tt.sizes, store.batchSizes())
			store.AssertNumberOfCalls(t, "InsertMany", len(tt.sizes))
			assert.Equal(t, len(tt.sizes), report.Flushes)
			assert.Equal(t, tt.rows, report.Persisted)
			if tt.sizes != nil {
				assert.Equal(t, tt.sizes, report.FlushSizes)
			}
		})
	}
}

func TestImportSkipsFailedRows(t *testing.T) {
	store := &mockStore{}
	store.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
	fail := map[int]bool{0: true, 7: true, 12: true}

	report, err := New(&stubClassifier{}, store).Import(context.Background(), strings.NewReader(tsv(15, fail)), 0)
	require.NoError(t, err)

	assert.Equal(t, 15, report.Read)
	assert.Equal(t, 12, report.Classified)
	assert.Equal(t, 3, report.Failed)
	assert.Equal(t, 12, report.Persisted)
	assert.Equal(t, []int{10, 2}, store.batchSizes())

	for _, call := range store.Calls {
		for _, r := range call.Arguments.Get(1).([]models.Review) {
			assert.NotContains(t, r.Content, "FAIL")
		}
	}
}

func TestImportRespectsLimit(t *testing.T) {
	store := &mockStore{}
	store.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
	classifier := &stubClassifier{}

	report, err := New(classifier, store).Import(context.Background(), strings.NewReader(tsv(40, nil)), 12)
	require.NoError(t, err)

	assert.Equal(t, 12, report.Read)
	assert.Equal(t, 12, classifier.calls)
	assert.Equal(t, []int{10, 2}, store.batchSizes())
}

func TestImportMalformedRows(t *testing.T) {
	store := &mockStore{}
	store.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
	input := "5\tgood stuff\nno-tab-here\n1\tbad stuff\twith a tab\n"

	report, err := New(&stubClassifier{}, store).Import(context.Background(), strings.NewReader(input), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Read)
	assert.Equal(t, 1, report.Failed)
	require.Equal(t, []int{2}, store.batchSizes())

	batch := store.Calls[0].Arguments.Get(1).([]models.Review)
	assert.Equal(t, "good stuff", batch[0].Content)
	assert.Equal(t, "bad stuff\twith a tab", batch[1].Content)
	assert.Equal(t, models.SentimentNegative, batch[1].Sentiment)
}

func TestImportFlushFailureDropsOnlyThatBatch(t *testing.T) {
	store := &mockStore{}
	diskFull := errors.New("disk full")
	store.On("InsertMany", mock.Anything, mock.Anything).Return(diskFull).Once()
	store.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
	inv := &countingInvalidator{}

	report, err := New(&stubClassifier{}, store, WithInvalidator(inv)).
		Import(context.Background(), strings.NewReader(tsv(25, nil)), 0)

	require.ErrorIs(t, err, diskFull)
	assert.Equal(t, 25, report.Read)
	assert.Equal(t, 25, report.Classified)
	assert.Equal(t, 1, report.FailedFlushes)
	assert.Equal(t, 10, report.Dropped)
	assert.Equal(t, 15, report.Persisted)
	assert.Equal(t, []int{10, 5}, report.FlushSizes)
	assert.Equal(t, []int{10, 10, 5}, store.batchSizes())
	assert.Equal(t, 2, inv.calls, "only successful flushes invalidate")
}

func TestImportCustomBatchSize(t *testing.T) {
	store := &mockStore{}
	store.On("InsertMany", mock.Anything, mock.Anything).Return(nil)

	_, err := New(&stubClassifier{}, store, WithBatchSize(4), WithProgressEvery(3)).
		Import(context.Background(), strings.NewReader(tsv(9, nil)), 0)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 1}, store.batchSizes())
}

func TestImportCancelFlushesBuffer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &mockStore{}
	store.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
	classifier := &stubClassifier{onCall: func(n int) {
		if n == 3 {
			cancel()
		}
	}}

	report, err := New(classifier, store).Import(ctx, strings.NewReader(tsv(20, nil)), 0)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 3, report.Read)
	assert.Equal(t, []int{3}, store.batchSizes())
	assert.Equal(t, 3, report.Persisted)
}

func TestImportFileIntoStore(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	defer store.Close()

	path := filepath.Join(t.TempDir(), "reviews.txt")
	require.NoError(t, os.WriteFile(path, []byte(tsv(23, map[int]bool{4: true, 19: true})), 0o600))

	im := New(&stubClassifier{}, store)

	report, err := im.ImportFile(ctx, path, 0)
	require.NoError(t, err)
	assert.Equal(t, 21, report.Persisted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(21), count)

	// no dedup: a second run over the same file appends the same rows again
	_, err = im.ImportFile(ctx, path, 0)
	require.NoError(t, err)
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestImportFileMissing(t *testing.T) {
	_, err := New(&stubClassifier{}, &mockStore{}).ImportFile(context.Background(), "does/not/exist.txt", 0)
	assert.ErrorContains(t, err, "failed to open import file")
}
