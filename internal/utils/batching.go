package utils

import (
	"log/slog"
	"sync"
)

const DEFAULT_BATCH_SIZE = 10

// BatchBuffer accumulates items until a caller drains it.
type BatchBuffer[T any] struct {
	buffer     []T
	capacity   int
	bufferLock sync.Mutex
}

// NewBatchBuffer returns a buffer that reports Full at capacity items.
// A non-positive capacity falls back to DEFAULT_BATCH_SIZE.
func NewBatchBuffer[T any](capacity int) *BatchBuffer[T] {
	if capacity <= 0 {
		capacity = DEFAULT_BATCH_SIZE
	}
	return &BatchBuffer[T]{
		buffer:   make([]T, 0, capacity),
		capacity: capacity,
	}
}

func (b *BatchBuffer[T]) Add(item T) {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	b.buffer = append(b.buffer, item)
}

// GetAndClear hands the buffered items to the caller and starts a new batch.
func (b *BatchBuffer[T]) GetAndClear() []T {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	if len(b.buffer) == 0 {
		return nil
	}

	batch := b.buffer
	b.buffer = make([]T, 0, b.capacity)
	return batch
}

func (b *BatchBuffer[T]) Size() int {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	return len(b.buffer)
}

func (b *BatchBuffer[T]) Capacity() int {
	return b.capacity
}

func (b *BatchBuffer[T]) Full() bool {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	return len(b.buffer) >= b.capacity
}

func (b *BatchBuffer[T]) HasData() bool {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()
	return len(b.buffer) > 0
}

func (b *BatchBuffer[T]) LogBatchProcessing(batchType string) {
	b.bufferLock.Lock()
	defer b.bufferLock.Unlock()

	slog.Debug("[BatchBuffer] Processing batch",
		slog.String("type", batchType),
		slog.Int("batch_size", len(b.buffer)))
}
