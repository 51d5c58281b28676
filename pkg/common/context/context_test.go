package context

import (
	"context"
	"testing"
	"time"
)

func TestWithOptionalTimeout(t *testing.T) {
	t.Run("zero timeout keeps parent", func(t *testing.T) {
		parent := context.Background()
		ctx, cancel := WithOptionalTimeout(parent, 0)
		defer cancel()

		if ctx != parent {
			t.Error("expected parent context to be returned")
		}
		if _, ok := ctx.Deadline(); ok {
			t.Error("expected no deadline")
		}
	})

	t.Run("positive timeout sets deadline", func(t *testing.T) {
		ctx, cancel := WithOptionalTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline")
		}
	})
}

func TestDetach(t *testing.T) {
	type key struct{}
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "v"))
	detached := Detach(parent)
	cancel()

	if IsCanceled(detached) {
		t.Error("detached context should not be canceled with its parent")
	}
	if detached.Value(key{}) != "v" {
		t.Error("detached context should keep parent values")
	}
}

func TestIsCanceledAndTimedOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	if !IsCanceled(ctx) {
		t.Error("expected canceled context")
	}
	if !IsTimedOut(ctx) {
		t.Error("expected timed out context")
	}

	if IsCanceled(context.Background()) {
		t.Error("background context is never canceled")
	}
}
