// Package markup is the rendering collaborator: a compact component model
// and a renderer that turns composed page content into response bytes,
// with per-request metadata available to every nested component.
package markup

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/arbor-web/arbor/pkg/layout"
	"github.com/arbor-web/arbor/pkg/task"
)

// Component is anything that can render itself to HTML within a request
// context.
type Component interface {
	HTML(ctx context.Context) (string, error)
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(ctx context.Context) (string, error)

func (f ComponentFunc) HTML(ctx context.Context) (string, error) { return f(ctx) }

// Text renders as escaped text content.
type Text string

func (t Text) HTML(context.Context) (string, error) {
	return html.EscapeString(string(t)), nil
}

// Raw renders as-is, without escaping. The caller vouches for the content.
type Raw string

func (r Raw) HTML(context.Context) (string, error) {
	return string(r), nil
}

// Fragment renders its children in order with no wrapper of its own.
type Fragment []any

func (f Fragment) HTML(ctx context.Context) (string, error) {
	var b strings.Builder
	for _, child := range f {
		s, err := HTMLOf(ctx, child)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Attrs is an attribute set for El. Keys are emitted in sorted order so
// output is deterministic.
type Attrs map[string]string

// voidElements have no closing tag.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "source": {},
	"track": {}, "wbr": {},
}

type element struct {
	tag      string
	attrs    Attrs
	children []any
}

// El builds an HTML element. Children may be Components, strings (escaped),
// other renderable values, or a single Attrs value contributing
// attributes.
func El(tag string, children ...any) Component {
	e := &element{tag: tag}
	for _, child := range children {
		if attrs, ok := child.(Attrs); ok {
			if e.attrs == nil {
				e.attrs = make(Attrs, len(attrs))
			}
			for k, v := range attrs {
				e.attrs[k] = v
			}
			continue
		}
		e.children = append(e.children, child)
	}
	return e
}

func (e *element) HTML(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(e.tag)

	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ` %s="%s"`, k, html.EscapeString(e.attrs[k]))
	}
	b.WriteByte('>')

	if _, void := voidElements[e.tag]; void {
		return b.String(), nil
	}

	for _, child := range e.children {
		s, err := HTMLOf(ctx, child)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
	return b.String(), nil
}

// HTMLOf renders any supported value to HTML: Components render
// themselves, strings are escaped, slices render in order, pending results
// are awaited first. Rendering a bare-content marker is a usage error; it
// must have been unwrapped by the layout machinery.
func HTMLOf(ctx context.Context, v any) (string, error) {
	v, err := task.Await(ctx, v)
	if err != nil {
		return "", err
	}

	switch c := v.(type) {
	case nil:
		return "", nil
	case layout.Bare:
		return "", fmt.Errorf("markup: bare content marker must never reach the renderer")
	case Component:
		return c.HTML(ctx)
	case string:
		return html.EscapeString(c), nil
	case []byte:
		return html.EscapeString(string(c)), nil
	case []any:
		return Fragment(c).HTML(ctx)
	case []Component:
		children := make(Fragment, len(c))
		for i, child := range c {
			children[i] = child
		}
		return children.HTML(ctx)
	case fmt.Stringer:
		return html.EscapeString(c.String()), nil
	default:
		return html.EscapeString(fmt.Sprint(c)), nil
	}
}
