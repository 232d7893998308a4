package router

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DocInfo contains top-level metadata for a generated route document.
type DocInfo struct {
	Title       string
	Description string
	Version     string
}

// Doc is an OpenAPI 3.0 document generated from a route table. Only the
// structural subset this router can know about is emitted: paths,
// operations, path parameters, names and tags. Page-like routes carry no
// response schema, their responses are rendered markup.
type Doc struct {
	OpenAPI string             `json:"openapi"`
	Info    DocInfoSection     `json:"info"`
	Paths   map[string]DocPath `json:"paths"`
}

// DocInfoSection is the info block of a Doc.
type DocInfoSection struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// DocPath maps lowercase HTTP methods to operations.
type DocPath map[string]*DocOperation

// DocOperation describes a single routed operation.
type DocOperation struct {
	OperationID string                 `json:"operationId,omitempty"`
	Description string                 `json:"description,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Deprecated  bool                   `json:"deprecated,omitempty"`
	Parameters  []DocParameter         `json:"parameters,omitempty"`
	Responses   map[string]DocResponse `json:"responses"`
}

// DocParameter describes a path parameter.
type DocParameter struct {
	Name     string    `json:"name"`
	In       string    `json:"in"`
	Required bool      `json:"required"`
	Schema   DocSchema `json:"schema"`
}

// DocResponse describes one response status.
type DocResponse struct {
	Description string                  `json:"description"`
	Content     map[string]DocMediaType `json:"content,omitempty"`
}

// DocMediaType describes response content for one media type.
type DocMediaType struct {
	Schema *DocSchema `json:"schema,omitempty"`
}

// DocSchema is the JSON schema subset used for parameters.
type DocSchema struct {
	Type string `json:"type,omitempty"`
}

// BuildDoc converts a route table into a Doc.
func BuildDoc(info DocInfo, routes []Route) *Doc {
	if info.Title == "" {
		info.Title = "Application"
	}
	if info.Version == "" {
		info.Version = "0.1.0"
	}

	doc := &Doc{
		OpenAPI: "3.0.3",
		Info: DocInfoSection{
			Title:       info.Title,
			Description: info.Description,
			Version:     info.Version,
		},
		Paths: make(map[string]DocPath),
	}

	for _, route := range routes {
		path, ok := doc.Paths[route.Pattern]
		if !ok {
			path = make(DocPath)
			doc.Paths[route.Pattern] = path
		}
		for _, method := range route.Methods {
			op := &DocOperation{
				OperationID: route.Info.Name,
				Description: route.Info.Description,
				Tags:        route.Info.Tags,
				Deprecated:  route.Info.Deprecated,
				Parameters:  patternParameters(route.Pattern),
				Responses:   map[string]DocResponse{"200": operationResponse(route.Info)},
			}
			path[strings.ToLower(method)] = op
		}
	}

	return doc
}

// Encode marshals the document as indented JSON for CLI output.
func (d *Doc) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func operationResponse(info RouteInfo) DocResponse {
	if info.NoResponseSchema {
		return DocResponse{
			Description: "Rendered markup",
			Content: map[string]DocMediaType{
				"text/html": {},
			},
		}
	}
	return DocResponse{
		Description: "Successful response",
		Content: map[string]DocMediaType{
			"application/json": {Schema: &DocSchema{Type: "object"}},
		},
	}
}

// patternParameters extracts the {name} tokens of a pattern as required
// path parameters.
func patternParameters(pattern string) []DocParameter {
	var params []DocParameter
	for _, seg := range strings.Split(pattern, "/") {
		if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			params = append(params, DocParameter{
				Name:     seg[1 : len(seg)-1],
				In:       "path",
				Required: true,
				Schema:   DocSchema{Type: "string"},
			})
		}
	}
	return params
}

// FormatTable renders a route table as aligned text, one line per
// method+pattern pair, for the CLI.
func FormatTable(routes []Route) string {
	type line struct {
		method, pattern, name, tags string
	}

	var lines []line
	methodWidth, patternWidth, nameWidth := len("METHOD"), len("PATH"), len("NAME")
	for _, route := range routes {
		for _, method := range route.Methods {
			l := line{
				method:  method,
				pattern: route.Pattern,
				name:    route.Info.Name,
				tags:    strings.Join(route.Info.Tags, ","),
			}
			if route.Info.Deprecated {
				l.tags = strings.TrimPrefix(l.tags+" (deprecated)", " ")
			}
			if len(l.method) > methodWidth {
				methodWidth = len(l.method)
			}
			if len(l.pattern) > patternWidth {
				patternWidth = len(l.pattern)
			}
			if len(l.name) > nameWidth {
				nameWidth = len(l.name)
			}
			lines = append(lines, l)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %s\n", methodWidth, "METHOD", patternWidth, "PATH", nameWidth, "NAME", "TAGS")
	for _, l := range lines {
		fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %s\n", methodWidth, l.method, patternWidth, l.pattern, nameWidth, l.name, l.tags)
	}
	return b.String()
}
