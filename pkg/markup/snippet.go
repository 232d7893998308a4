package markup

import (
	"context"
	"html"
	"strings"
)

// SnippetLayout converts an HTML template string into a layout function.
// The template may contain:
//
//	{slot}        replaced with the wrapped content
//	{meta.key}    replaced with the metadata value for key, escaped
//
// Substitution happens at render time, so metadata placeholders see the
// metadata of the page being rendered. The returned function is usable as
// a module Definition's Layout.
func SnippetLayout(template string) func(content any) any {
	before, after, hasSlot := strings.Cut(template, "{slot}")

	return func(content any) any {
		return ComponentFunc(func(ctx context.Context) (string, error) {
			var b strings.Builder
			b.WriteString(substituteMeta(ctx, before))
			if hasSlot {
				s, err := HTMLOf(ctx, content)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
				b.WriteString(substituteMeta(ctx, after))
			}
			return b.String(), nil
		})
	}
}

// substituteMeta replaces {meta.key} placeholders from the render
// context's metadata. Unknown keys become empty strings.
func substituteMeta(ctx context.Context, s string) string {
	if !strings.Contains(s, "{meta.") {
		return s
	}
	metadata := MetadataFrom(ctx)

	var b strings.Builder
	for {
		start := strings.Index(s, "{meta.")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		key := s[start+len("{meta.") : start+end]
		b.WriteString(html.EscapeString(metadata.GetString(key, "")))
		s = s[start+end+1:]
	}
}
