package service

import (
	"context"
	"testing"

	"taskflow/internal/cache"
)

func TestReadThrough_WriteDuringLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(0)
	tags := []string{TasksTag, cache.Tag(TasksTag, "1")}

	// the load returns the row as it was, then a write commits and invalidates
	got, err := readThrough(ctx, c, "tasks:id:1", tags, func() (string, error) {
		if err := c.Invalidate(ctx, cache.Tag(TasksTag, "1")); err != nil {
			t.Fatalf("Invalidate: %v", err)
		}
		return "before write", nil
	})
	if err != nil || got != "before write" {
		t.Fatalf("readThrough() = %q, %v", got, err)
	}
	if c.Len() != 0 {
		t.Fatalf("value read before the write was cached")
	}

	loads := 0
	load := func() (string, error) {
		loads++
		return "after write", nil
	}
	for i := 0; i < 2; i++ {
		got, err = readThrough(ctx, c, "tasks:id:1", tags, load)
		if err != nil || got != "after write" {
			t.Fatalf("readThrough() = %q, %v", got, err)
		}
	}
	if loads != 1 {
		t.Errorf("load ran %d times, want 1 with the second read cached", loads)
	}
}
