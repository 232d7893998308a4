package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwaitPassesThroughPlainValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"string", "hello"},
		{"int", 42},
		{"nil", nil},
		{"struct", struct{ A int }{A: 1}},
	}

	for _, tt := range tests {
		got, err := Await(context.Background(), tt.value)
		if err != nil {
			t.Errorf("Await(%s) error = %v", tt.name, err)
		}
		if got != tt.value {
			t.Errorf("Await(%s) = %v, want %v", tt.name, got, tt.value)
		}
	}
}

func TestGoProducesValue(t *testing.T) {
	p := Go(func() (any, error) {
		return "done", nil
	})

	got, err := Await(context.Background(), p)
	if err != nil {
		t.Fatalf("Await error = %v", err)
	}
	if got != "done" {
		t.Errorf("Await = %v, want %q", got, "done")
	}
}

func TestGoPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	p := Go(func() (any, error) {
		return nil, wantErr
	})

	_, err := Await(context.Background(), p)
	if !errors.Is(err, wantErr) {
		t.Errorf("Await error = %v, want %v", err, wantErr)
	}
}

func TestAwaitNestedPending(t *testing.T) {
	inner := Resolved("inner")
	outer := Go(func() (any, error) {
		return inner, nil
	})

	got, err := Await(context.Background(), outer)
	if err != nil {
		t.Fatalf("Await error = %v", err)
	}
	if got != "inner" {
		t.Errorf("Await = %v, want %q", got, "inner")
	}
}

func TestAwaitRespectsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	p := Go(func() (any, error) {
		<-block
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Await(ctx, p)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Await error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestResolvedAwaitsImmediately(t *testing.T) {
	p := Resolved(7)
	got, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("Await error = %v", err)
	}
	if got != 7 {
		t.Errorf("Await = %v, want 7", got)
	}
}

func TestPendingAwaitTwice(t *testing.T) {
	p := Go(func() (any, error) { return 1, nil })

	for i := 0; i < 2; i++ {
		got, err := p.Await(context.Background())
		if err != nil {
			t.Fatalf("Await #%d error = %v", i, err)
		}
		if got != 1 {
			t.Errorf("Await #%d = %v, want 1", i, got)
		}
	}
}
