package oplog_test

import (
	"fmt"
	"sync"
	"testing"

	"feedsweep/internal/oplog"
)

func TestAppend_NewestFirst(t *testing.T) {
	b := oplog.New(10)
	b.Append("request", "first", nil)
	b.Append("request", "second", nil)

	entries := b.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != "second" || entries[1].Action != "first" {
		t.Errorf("wrong order: %q, %q", entries[0].Action, entries[1].Action)
	}
	if entries[0].ID == entries[1].ID {
		t.Error("entry IDs should be unique")
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestAppend_EvictsOldestAtCapacity(t *testing.T) {
	b := oplog.New(200)
	for i := 1; i <= 205; i++ {
		b.Append("request", fmt.Sprintf("append-%d", i), map[string]any{"n": i})
	}

	entries := b.Entries()
	if len(entries) != 200 {
		t.Fatalf("expected exactly 200 entries, got %d", len(entries))
	}
	if entries[0].Action != "append-205" {
		t.Errorf("newest entry should be append-205, got %q", entries[0].Action)
	}
	if entries[199].Action != "append-6" {
		t.Errorf("oldest surviving entry should be append-6, got %q", entries[199].Action)
	}
}

func TestClear(t *testing.T) {
	b := oplog.New(5)
	b.Append("request", "x", nil)
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("expected empty buffer after Clear, got %d", b.Len())
	}
}

func TestDefaultCapacity(t *testing.T) {
	b := oplog.New(0)
	for i := 0; i < oplog.DefaultCapacity+50; i++ {
		b.Append("request", "fill", nil)
	}
	if b.Len() != oplog.DefaultCapacity {
		t.Errorf("expected %d entries, got %d", oplog.DefaultCapacity, b.Len())
	}
}

func TestConcurrentAppends(t *testing.T) {
	b := oplog.New(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Append("request", "concurrent", nil)
			}
		}()
	}
	wg.Wait()

	if b.Len() != 50 {
		t.Errorf("expected buffer pinned at capacity 50, got %d", b.Len())
	}
}
