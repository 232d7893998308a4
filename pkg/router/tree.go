package router

import (
	"fmt"
	"sort"
	"strings"
)

// Node is one level of the application tree. Nodes are keyed by URL
// segment; a node may own a package, but intermediate nodes created on the
// way to a deeper package have none. The tree is built once from a
// discovery pass and is read-only afterwards.
type Node struct {
	// URL is the full URL of this node ("/" for the root).
	URL string

	// Package is the package owning this URL, nil for intermediate nodes
	// and for a root that has only sub-pages.
	Package *PackageInfo

	children map[string]*Node
}

// NewNode creates an empty node for the given URL.
func NewNode(url string) *Node {
	return &Node{URL: url, children: make(map[string]*Node)}
}

// BuildTree inserts every package into a fresh tree rooted at "/".
// Two packages deriving the same URL is a configuration error.
func BuildTree(packages []PackageInfo) (*Node, error) {
	root := NewNode("/")
	for _, pkg := range packages {
		if err := root.Add(pkg); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Add inserts a package into the subtree rooted at n, creating
// intermediate nodes as needed. The package URL must extend n's URL.
func (n *Node) Add(pkg PackageInfo) error {
	if !strings.HasPrefix(pkg.URL, n.URL) {
		return fmt.Errorf("router: %s does not belong under %s", pkg.URL, n.URL)
	}

	if pkg.URL == n.URL {
		if n.Package != nil {
			return fmt.Errorf("router: package already set for %s: current is %s, new is %s",
				n.URL, n.Package.ImportPath, pkg.ImportPath)
		}
		p := pkg
		n.Package = &p
		return nil
	}

	var rest, prefix string
	if n.URL == "/" {
		rest = pkg.URL
		prefix = ""
	} else {
		rest = strings.TrimPrefix(pkg.URL, n.URL)
		prefix = n.URL
	}

	// First segment after the leading slash, /-prefixed.
	segment := "/" + strings.SplitN(rest[1:], "/", 2)[0]
	child, ok := n.children[segment]
	if !ok {
		// Built from the parent URL so intermediate levels without a
		// package of their own still get correct URLs.
		child = NewNode(prefix + segment)
		n.children[segment] = child
	}
	return child.Add(pkg)
}

// Child returns the child mounted at the /-prefixed segment, or nil.
func (n *Node) Child(segment string) *Node {
	return n.children[segment]
}

// Segments returns the child segments in sorted order. Iterating children
// through it keeps route registration deterministic.
func (n *Node) Segments() []string {
	segments := make([]string, 0, len(n.children))
	for seg := range n.children {
		segments = append(segments, seg)
	}
	sort.Strings(segments)
	return segments
}

// Segment returns the last URL segment of this node, /-prefixed.
func (n *Node) Segment() string {
	i := strings.LastIndex(n.URL, "/")
	return "/" + n.URL[i+1:]
}

// Walk visits n and every descendant in depth-first, sorted-segment order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, seg := range n.Segments() {
		n.children[seg].Walk(fn)
	}
}
