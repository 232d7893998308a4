package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/arbor-web/arbor/pkg/inject"
	"github.com/arbor-web/arbor/pkg/task"
)

func wrapWith(tag string) Provider {
	return func(_ *inject.Scope) (Func, error) {
		return func(_ context.Context, content any) (any, error) {
			return fmt.Sprintf("<%s>%v</%s>", tag, content, tag), nil
		}, nil
	}
}

func runProvider(t *testing.T, p Provider, content any) any {
	t.Helper()
	scope := inject.New().NewScope(nil, nil, nil)
	fn, err := p(scope)
	if err != nil {
		t.Fatalf("provider error = %v", err)
	}
	got, err := fn(context.Background(), content)
	if err != nil {
		t.Fatalf("layout error = %v", err)
	}
	return got
}

func TestCombineIdentity(t *testing.T) {
	a := wrapWith("a")

	if got := Combine(a, nil); got == nil {
		t.Fatal("Combine(a, nil) = nil")
	}
	if got := runProvider(t, Combine(a, nil), "x"); got != "<a>x</a>" {
		t.Errorf("Combine(a, nil) = %v, want <a>x</a>", got)
	}
	if got := runProvider(t, Combine(nil, a), "x"); got != "<a>x</a>" {
		t.Errorf("Combine(nil, a) = %v, want <a>x</a>", got)
	}
}

func TestCombineAppliesInsideOut(t *testing.T) {
	combined := Combine(wrapWith("outer"), wrapWith("inner"))

	got := runProvider(t, combined, "page")
	if got != "<outer><inner>page</inner></outer>" {
		t.Errorf("combined = %v, want <outer><inner>page</inner></outer>", got)
	}
}

func TestCombineIsAssociative(t *testing.T) {
	a, b, c := wrapWith("a"), wrapWith("b"), wrapWith("c")

	left := runProvider(t, Combine(Combine(a, b), c), "x")
	right := runProvider(t, Combine(a, Combine(b, c)), "x")
	want := "<a><b><c>x</c></b></a>"
	if left != want || right != want {
		t.Errorf("left = %v, right = %v, want %v", left, right, want)
	}
}

func TestBareStopsOuterLayouts(t *testing.T) {
	outerCalled := false
	outer := func(_ *inject.Scope) (Func, error) {
		return func(_ context.Context, content any) (any, error) {
			outerCalled = true
			return fmt.Sprintf("<outer>%v</outer>", content), nil
		}, nil
	}
	bare := func(_ *inject.Scope) (Func, error) {
		return func(_ context.Context, content any) (any, error) {
			return NoWrap(fmt.Sprintf("<inner>%v</inner>", content)), nil
		}, nil
	}

	got := runProvider(t, Combine(Provider(outer), Provider(bare)), "page")
	if got != "<inner>page</inner>" {
		t.Errorf("combined = %v, want <inner>page</inner>", got)
	}
	if outerCalled {
		t.Error("outer layout ran despite the inner bare marker")
	}
}

func TestBareStopsWholeChain(t *testing.T) {
	// Three levels with the marker in the middle: the outermost two layouts
	// must both be skipped because the chain is cut where the marker appears.
	mid := func(_ *inject.Scope) (Func, error) {
		return func(_ context.Context, content any) (any, error) {
			return NoWrap(fmt.Sprintf("<mid>%v</mid>", content)), nil
		}, nil
	}
	chain := Combine(Combine(wrapWith("root"), wrapWith("section")), Provider(mid))
	inner := Combine(chain, wrapWith("leaf"))

	got := runProvider(t, inner, "page")
	if got != "<mid><leaf>page</leaf></mid>" {
		t.Errorf("chain = %v, want <mid><leaf>page</leaf></mid>", got)
	}
}

func TestCombineAwaitsAsyncLayouts(t *testing.T) {
	async := func(tag string) Provider {
		return func(_ *inject.Scope) (Func, error) {
			return func(_ context.Context, content any) (any, error) {
				return task.Go(func() (any, error) {
					return fmt.Sprintf("<%s>%v</%s>", tag, content, tag), nil
				}), nil
			}, nil
		}
	}

	got := runProvider(t, Combine(async("outer"), async("inner")), "page")
	if got != "<outer><inner>page</inner></outer>" {
		t.Errorf("combined = %v, want <outer><inner>page</inner></outer>", got)
	}
}

func TestCombinePropagatesErrors(t *testing.T) {
	wantErr := errors.New("render failed")
	failing := func(_ *inject.Scope) (Func, error) {
		return func(_ context.Context, _ any) (any, error) {
			return nil, wantErr
		}, nil
	}

	scope := inject.New().NewScope(nil, nil, nil)
	fn, err := Combine(wrapWith("outer"), Provider(failing))(scope)
	if err != nil {
		t.Fatalf("provider error = %v", err)
	}
	if _, err = fn(context.Background(), "x"); !errors.Is(err, wantErr) {
		t.Errorf("layout error = %v, want %v", err, wantErr)
	}
}

func TestBind(t *testing.T) {
	in := inject.New()
	in.Provide(func() string { return "site" })

	p, err := Bind(func(content any, name string) any {
		return fmt.Sprintf("<%s>%v</%s>", name, content, name)
	})
	if err != nil {
		t.Fatalf("Bind error = %v", err)
	}

	scope := in.NewScope(nil, nil, nil)
	fn, err := p(scope)
	if err != nil {
		t.Fatalf("provider error = %v", err)
	}
	got, err := fn(context.Background(), "page")
	if err != nil {
		t.Fatalf("layout error = %v", err)
	}
	if got != "<site>page</site>" {
		t.Errorf("layout = %v, want <site>page</site>", got)
	}
}

func TestBindError(t *testing.T) {
	wantErr := errors.New("boom")
	p, err := Bind(func(content any) (any, error) { return nil, wantErr })
	if err != nil {
		t.Fatalf("Bind error = %v", err)
	}

	scope := inject.New().NewScope(nil, nil, nil)
	fn, err := p(scope)
	if err != nil {
		t.Fatalf("provider error = %v", err)
	}
	if _, err = fn(context.Background(), "x"); !errors.Is(err, wantErr) {
		t.Errorf("layout error = %v, want %v", err, wantErr)
	}
}

func TestBindRejectsInvalidFunctions(t *testing.T) {
	tests := []struct {
		name    string
		fn      any
		wantMsg string
	}{
		{"not a function", 42, "is not a function"},
		{"no parameters", func() any { return nil }, "first parameter"},
		{"no return values", func(content any) {}, "must return"},
		{"second return not error", func(content any) (any, string) { return nil, "" }, "must be error"},
		{"variadic", func(content any, rest ...string) any { return nil }, "variadic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(tt.fn)
			if err == nil {
				t.Fatal("Bind succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Bind error = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}
