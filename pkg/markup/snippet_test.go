package markup

import (
	"context"
	"testing"

	"github.com/arbor-web/arbor/pkg/module"
)

func TestSnippetLayout(t *testing.T) {
	layoutFn := SnippetLayout(`<main>{slot}</main>`)

	got := mustHTML(t, layoutFn(El("p", "content")))
	if got != "<main><p>content</p></main>" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippetLayoutMetadata(t *testing.T) {
	layoutFn := SnippetLayout(`<title>{meta.title}</title><body>{slot}</body>`)

	ctx := WithMetadata(context.Background(), module.Mapping{"title": "A & B"})
	component := layoutFn("hi").(Component)
	got, err := component.HTML(ctx)
	if err != nil {
		t.Fatalf("HTML error = %v", err)
	}
	if got != "<title>A &amp; B</title><body>hi</body>" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippetLayoutMissingMetadataKey(t *testing.T) {
	layoutFn := SnippetLayout(`<h1>{meta.title}</h1>{slot}`)

	got := mustHTML(t, layoutFn("x"))
	if got != "<h1></h1>x" {
		t.Errorf("snippet = %q", got)
	}
}

func TestSnippetLayoutWithoutSlot(t *testing.T) {
	layoutFn := SnippetLayout(`<p>static</p>`)

	got := mustHTML(t, layoutFn("ignored"))
	if got != "<p>static</p>" {
		t.Errorf("snippet = %q", got)
	}
}
