package router

import (
	"strings"
	"testing"
)

func pkg(importPath, url string) PackageInfo {
	return PackageInfo{Dir: importPath, ImportPath: importPath, URL: url}
}

func TestBuildTree(t *testing.T) {
	packages := []PackageInfo{
		pkg("app", "/"),
		pkg("app/users", "/users"),
		pkg("app/users/_id_", "/users/{id}"),
		pkg("app/users/_id_/posts", "/users/{id}/posts"),
		pkg("app/about", "/about"),
	}

	root, err := BuildTree(packages)
	if err != nil {
		t.Fatalf("BuildTree error = %v", err)
	}

	// Every node's package URL must equal the node URL, and every package
	// must appear exactly once.
	found := make(map[string]int)
	root.Walk(func(n *Node) {
		if n.Package == nil {
			return
		}
		if n.Package.URL != n.URL {
			t.Errorf("node %q owns package with URL %q", n.URL, n.Package.URL)
		}
		found[n.Package.ImportPath]++
	})
	for _, p := range packages {
		if found[p.ImportPath] != 1 {
			t.Errorf("package %q appears %d times in the tree, want 1", p.ImportPath, found[p.ImportPath])
		}
	}

	users := root.Child("/users")
	if users == nil {
		t.Fatal("missing /users child")
	}
	id := users.Child("/{id}")
	if id == nil {
		t.Fatal("missing /{id} child under /users")
	}
	if id.URL != "/users/{id}" {
		t.Errorf("id.URL = %q, want /users/{id}", id.URL)
	}
	posts := id.Child("/posts")
	if posts == nil || posts.Package == nil {
		t.Fatal("missing /posts node or its package")
	}
}

func TestBuildTreeCreatesIntermediateNodes(t *testing.T) {
	root, err := BuildTree([]PackageInfo{
		pkg("app/a/b/c", "/a/b/c"),
	})
	if err != nil {
		t.Fatalf("BuildTree error = %v", err)
	}

	a := root.Child("/a")
	if a == nil {
		t.Fatal("missing /a")
	}
	if a.Package != nil {
		t.Errorf("/a owns package %q, want none", a.Package.ImportPath)
	}
	if a.URL != "/a" {
		t.Errorf("a.URL = %q, want /a", a.URL)
	}
	b := a.Child("/b")
	if b == nil || b.Package != nil {
		t.Fatal("intermediate /a/b missing or unexpectedly owns a package")
	}
	c := b.Child("/c")
	if c == nil || c.Package == nil {
		t.Fatal("leaf /a/b/c missing or missing its package")
	}
}

func TestBuildTreeRootWithoutPackage(t *testing.T) {
	root, err := BuildTree([]PackageInfo{pkg("app/sub", "/sub")})
	if err != nil {
		t.Fatalf("BuildTree error = %v", err)
	}
	if root.Package != nil {
		t.Errorf("root owns package %q, want none", root.Package.ImportPath)
	}
}

func TestBuildTreeDuplicateURL(t *testing.T) {
	_, err := BuildTree([]PackageInfo{
		pkg("app/users", "/users"),
		pkg("app/other", "/users"),
	})
	if err == nil {
		t.Fatal("BuildTree succeeded, want duplicate URL error")
	}
	if !strings.Contains(err.Error(), "already set") {
		t.Errorf("error = %v, want it to mention the existing assignment", err)
	}
}

func TestNodeSegments(t *testing.T) {
	root, err := BuildTree([]PackageInfo{
		pkg("app/c", "/c"),
		pkg("app/a", "/a"),
		pkg("app/b", "/b"),
	})
	if err != nil {
		t.Fatalf("BuildTree error = %v", err)
	}

	got := root.Segments()
	want := []string{"/a", "/b", "/c"}
	if len(got) != len(want) {
		t.Fatalf("Segments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Segments[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNodeSegment(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"/", "/"},
		{"/users", "/users"},
		{"/users/{id}", "/{id}"},
	}
	for _, tt := range tests {
		if got := NewNode(tt.url).Segment(); got != tt.want {
			t.Errorf("Segment(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
