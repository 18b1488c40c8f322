package history

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrBufferClosed is returned when records are added to a closed buffer
var ErrBufferClosed = errors.New("history buffer is closed")

// DefaultCapacity is used when NewBuffer is given a non-positive capacity
const DefaultCapacity = 1000

// Buffer is a thread-safe circular buffer of records. When full the oldest
// record is dropped.
type Buffer struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
	size     int
	head     int // write position
	tail     int // oldest record
	closed   bool

	totalAdded   int64
	totalDropped int64

	logger zerolog.Logger
}

// Stats reports buffer usage
type Stats struct {
	Size         int   `json:"size"`
	Capacity     int   `json:"capacity"`
	TotalAdded   int64 `json:"total_added"`
	TotalDropped int64 `json:"total_dropped"`
}

func NewBuffer(capacity int, logger zerolog.Logger) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		records:  make([]Record, capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "history_buffer").Logger(),
	}
}

// Add appends a record, dropping the oldest one if the buffer is full
func (b *Buffer) Add(r Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBufferClosed
	}

	if b.size >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.totalDropped++
		if b.totalDropped == 1 {
			b.logger.Debug().Int("capacity", b.capacity).Msg("Buffer full, dropping oldest records")
		}
	} else {
		b.size++
	}

	b.records[b.head] = r
	b.head = (b.head + 1) % b.capacity
	b.totalAdded++
	return nil
}

// Snapshot returns every buffered record, oldest first, without removing them
func (b *Buffer) Snapshot() []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.copyRange(0, b.size)
}

// Latest returns the n most recent records, oldest first
func (b *Buffer) Latest(n int) []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.size {
		n = b.size
	}
	if n < 0 {
		n = 0
	}
	return b.copyRange(b.size-n, n)
}

// Drain removes and returns every buffered record, oldest first
func (b *Buffer) Drain() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.copyRange(0, b.size)
	b.tail = b.head
	b.size = 0
	return out
}

func (b *Buffer) copyRange(offset, n int) []Record {
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		out[i] = b.records[(b.tail+offset+i)%b.capacity]
	}
	return out
}

func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Buffer) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		Size:         b.size,
		Capacity:     b.capacity,
		TotalAdded:   b.totalAdded,
		TotalDropped: b.totalDropped,
	}
}

// Close stops the buffer from accepting records. Buffered records stay
// readable.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
