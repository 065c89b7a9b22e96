package hook

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func constant(v any) Handler {
	return func(context.Context, any) (any, error) { return v, nil }
}

func TestRegistry_EmitOrder(t *testing.T) {
	r := NewRegistry()
	r.Hook("scrapeEntry", "first", constant(1))
	r.Hook("scrapeEntry", "second", func(_ context.Context, arg any) (any, error) {
		return arg.(string) + "!", nil
	})
	r.Hook("other", "third", constant(3))

	got, err := r.Emit(context.Background(), "scrapeEntry", "hi")
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if diff := cmp.Diff([]any{1, "hi!"}, got); diff != "" {
		t.Errorf("Emit() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first", "second"}, r.Owners("scrapeEntry")); diff != "" {
		t.Errorf("Owners() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_EmitNoHandler(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Emit(context.Background(), "scrapeEntry", nil); !errors.Is(err, ErrNoHandler) {
		t.Errorf("Emit() error = %v, want ErrNoHandler", err)
	}
}

func TestRegistry_EmitStopsOnError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	called := false
	r.Hook("e", "ok", constant("a"))
	r.Hook("e", "bad", func(context.Context, any) (any, error) { return nil, boom })
	r.Hook("e", "late", func(context.Context, any) (any, error) {
		called = true
		return nil, nil
	})

	got, err := r.Emit(context.Background(), "e", nil)
	if !errors.Is(err, boom) {
		t.Errorf("Emit() error = %v, want %v", err, boom)
	}
	if diff := cmp.Diff([]any{"a"}, got); diff != "" {
		t.Errorf("partial results mismatch (-want +got):\n%s", diff)
	}
	if called {
		t.Error("handler after the failing one was called")
	}
}

func TestRegistry_Dispose(t *testing.T) {
	r := NewRegistry()
	disposeA := r.Hook("e", "a", constant("a"))
	r.Hook("e", "b", constant("b"))

	disposeA()
	disposeA()

	got, err := r.Emit(context.Background(), "e", nil)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if diff := cmp.Diff([]any{"b"}, got); diff != "" {
		t.Errorf("Emit() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_DisposeLastRemovesEvent(t *testing.T) {
	r := NewRegistry()
	dispose := r.Hook("e", "a", constant("a"))
	dispose()

	if _, err := r.Emit(context.Background(), "e", nil); !errors.Is(err, ErrNoHandler) {
		t.Errorf("Emit() error = %v, want ErrNoHandler", err)
	}
	if owners := r.Owners("e"); len(owners) != 0 {
		t.Errorf("Owners() = %v, want none", owners)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispose := r.Hook("e", "worker", constant(1))
			r.Emit(context.Background(), "e", nil)
			dispose()
		}()
	}
	wg.Wait()

	if owners := r.Owners("e"); len(owners) != 0 {
		t.Errorf("Owners() = %v, want none after dispose", owners)
	}
}
