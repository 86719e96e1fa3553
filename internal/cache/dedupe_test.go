package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryDeduper(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDeduper(time.Hour)

	if d.Hit(ctx, "pay_1") {
		t.Fatalf("expected miss before mark")
	}

	d.Mark(ctx, "pay_1")

	if !d.Hit(ctx, "pay_1") {
		t.Fatalf("expected hit after mark")
	}
	if d.Hit(ctx, "pay_2") {
		t.Fatalf("expected miss for unmarked key")
	}
}

func TestMemoryDeduper_Expiry(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDeduper(time.Nanosecond)

	d.Mark(ctx, "pay_1")
	time.Sleep(time.Millisecond)

	if d.Hit(ctx, "pay_1") {
		t.Fatalf("expected expired entry to miss")
	}
}
