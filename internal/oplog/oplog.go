// Package oplog keeps a bounded in-memory log of recent operations for live
// observability. It is deliberately not durable: the buffer resets with the
// process.
package oplog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the buffer when no explicit capacity is configured.
const DefaultCapacity = 200

// Entry is one logged operation.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
}

// Buffer is a fixed-capacity, newest-first operation log. All methods are
// safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	cap     int
	entries []Entry // newest first; len never exceeds cap
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{cap: capacity}
}

// Append records an operation at the head of the buffer, evicting the oldest
// entries once the capacity is exceeded.
func (b *Buffer) Append(typ, action string, details map[string]any) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Action:    action,
		Details:   details,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) < b.cap {
		b.entries = append(b.entries, Entry{})
	}
	copy(b.entries[1:], b.entries)
	b.entries[0] = e
	return e
}

// Entries returns a snapshot of the buffer, newest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}
