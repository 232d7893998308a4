package router

import (
	"net/http"
	"strings"
	"testing"
)

func TestBuildDoc(t *testing.T) {
	routes := []Route{
		{
			Methods: []string{http.MethodGet},
			Pattern: "/users/{id}",
			Info:    RouteInfo{Name: "app/users/_id_", Tags: []string{"Page"}, NoResponseSchema: true},
		},
		{
			Methods: []string{http.MethodPost},
			Pattern: "/users/{id}",
			Info:    RouteInfo{Name: "app/users/_id_.handle_submit", Tags: []string{"Page", "Submit"}, NoResponseSchema: true},
		},
		{
			Methods: []string{http.MethodGet},
			Pattern: "/api/health",
			Info:    RouteInfo{Name: "health"},
		},
	}

	doc := BuildDoc(DocInfo{Title: "demo", Version: "1.0.0"}, routes)

	if doc.OpenAPI != "3.0.3" {
		t.Errorf("OpenAPI = %q, want 3.0.3", doc.OpenAPI)
	}
	if doc.Info.Title != "demo" || doc.Info.Version != "1.0.0" {
		t.Errorf("Info = %+v", doc.Info)
	}

	users, ok := doc.Paths["/users/{id}"]
	if !ok {
		t.Fatal("missing /users/{id} path")
	}
	get, ok := users["get"]
	if !ok {
		t.Fatal("missing get operation")
	}
	if get.OperationID != "app/users/_id_" {
		t.Errorf("OperationID = %q", get.OperationID)
	}
	if len(get.Parameters) != 1 || get.Parameters[0].Name != "id" || get.Parameters[0].In != "path" {
		t.Errorf("Parameters = %+v, want the id path parameter", get.Parameters)
	}
	if _, ok := get.Responses["200"].Content["text/html"]; !ok {
		t.Errorf("page response content = %+v, want text/html", get.Responses["200"].Content)
	}
	if _, ok := users["post"]; !ok {
		t.Error("missing post operation")
	}

	health := doc.Paths["/api/health"]["get"]
	if health == nil {
		t.Fatal("missing /api/health get operation")
	}
	if _, ok := health.Responses["200"].Content["application/json"]; !ok {
		t.Errorf("api response content = %+v, want application/json", health.Responses["200"].Content)
	}
}

func TestBuildDocDefaults(t *testing.T) {
	doc := BuildDoc(DocInfo{}, nil)
	if doc.Info.Title == "" || doc.Info.Version == "" {
		t.Errorf("Info = %+v, want defaulted title and version", doc.Info)
	}
}

func TestDocEncode(t *testing.T) {
	doc := BuildDoc(DocInfo{Title: "demo"}, []Route{
		{Methods: []string{http.MethodGet}, Pattern: "/", Info: RouteInfo{Name: "app"}},
	})
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode error = %v", err)
	}
	if !strings.Contains(string(data), `"openapi": "3.0.3"`) {
		t.Errorf("Encode output missing openapi field: %s", data)
	}
}

func TestFormatTable(t *testing.T) {
	routes := []Route{
		{Methods: []string{http.MethodGet}, Pattern: "/", Info: RouteInfo{Name: "app", Tags: []string{"Page"}}},
		{Methods: []string{http.MethodGet, http.MethodPost}, Pattern: "/users/{id}", Info: RouteInfo{Name: "app/users/_id_"}},
		{Methods: []string{http.MethodDelete}, Pattern: "/old", Info: RouteInfo{Name: "app/old", Deprecated: true}},
	}

	out := FormatTable(routes)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Header plus one line per method.
	if len(lines) != 5 {
		t.Fatalf("FormatTable produced %d lines, want 5:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "METHOD") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(out, "/users/{id}") {
		t.Errorf("output missing pattern:\n%s", out)
	}
	if !strings.Contains(out, "(deprecated)") {
		t.Errorf("output missing deprecation mark:\n%s", out)
	}
}
