package markup

import (
	"context"
	"net/http"

	"github.com/arbor-web/arbor/pkg/module"
)

type metadataKey struct{}

// WithMetadata returns a context carrying the given metadata mapping.
func WithMetadata(ctx context.Context, metadata module.Mapping) context.Context {
	return context.WithValue(ctx, metadataKey{}, metadata)
}

// MetadataFrom returns the metadata installed for the current render, or
// nil. Any component in the rendered tree may call it.
func MetadataFrom(ctx context.Context) module.Mapping {
	m, _ := ctx.Value(metadataKey{}).(module.Mapping)
	return m
}

// Renderer turns composed page content plus metadata into response bytes.
type Renderer struct {
	contentType string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithContentType overrides the Content-Type reported by the renderer.
func WithContentType(ct string) RendererOption {
	return func(r *Renderer) { r.contentType = ct }
}

// NewRenderer creates a renderer with the default text/html content type.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{contentType: "text/html; charset=utf-8"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ContentType returns the Content-Type value for rendered responses.
func (r *Renderer) ContentType() string {
	return r.contentType
}

// Render renders value with the given metadata installed in the render
// context, so every nested component can read it via MetadataFrom.
func (r *Renderer) Render(req *http.Request, value any, metadata module.Mapping) ([]byte, error) {
	ctx := context.Background()
	if req != nil {
		ctx = req.Context()
	}
	ctx = WithMetadata(ctx, metadata)

	s, err := HTMLOf(ctx, value)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
