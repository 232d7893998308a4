package router

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// roleFiles are the file names that mark a directory as an application
// package. A directory belongs to the route tree as soon as it contains at
// least one of them.
var roleFiles = map[string]struct{}{
	"page.go":    {},
	"layout.go":  {},
	"actions.go": {},
	"api.go":     {},
	"error.go":   {},
}

// PackageInfo describes a single discovered application package: where it
// lives, how it is identified, and which URL its contents serve.
type PackageInfo struct {
	// Dir is the package directory relative to the scan root,
	// slash-separated; "." for the application root itself.
	Dir string

	// ImportPath identifies the package. It equals Dir, and it is the key
	// modules register themselves under. Two PackageInfo values are the
	// same package iff their ImportPaths match.
	ImportPath string

	// URL is the derived web URL for the package's contents. Directory
	// segments of the form _name_ become {name} tokens; the application
	// root maps to /.
	URL string
}

// Scanner discovers application packages under a root directory.
type Scanner struct {
	rootDir string
	appDir  string
}

// NewScanner creates a scanner for the application under rootDir/appDir.
// appDir may be empty when the application lives directly in rootDir.
func NewScanner(rootDir, appDir string) *Scanner {
	return &Scanner{rootDir: rootDir, appDir: appDir}
}

// Scan walks the application directory and returns one PackageInfo per
// directory containing at least one role file (page.go, layout.go,
// actions.go, api.go, error.go).
//
// Path segments that start with an underscore but do not end with one are
// excluded together with everything below them; the _name_ form is
// reserved for dynamic URL segments and stays in. Segments starting with a
// dot (.git and friends) are excluded the same way. The result is
// deduplicated and sorted by import path, so repeated scans of the same
// tree are deterministic.
func (s *Scanner) Scan() ([]PackageInfo, error) {
	appDir := filepath.Join(s.rootDir, s.appDir)

	seen := make(map[string]PackageInfo)
	err := filepath.WalkDir(appDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if p != appDir && excludedSegment(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if _, ok := roleFiles[d.Name()]; !ok {
			return nil
		}

		info, err := s.packageInfo(filepath.Dir(p))
		if err != nil {
			return err
		}
		seen[info.ImportPath] = info
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("router: scanning %s: %w", appDir, err)
	}

	packages := make([]PackageInfo, 0, len(seen))
	for _, info := range seen {
		packages = append(packages, info)
	}
	sort.Slice(packages, func(i, j int) bool {
		return packages[i].ImportPath < packages[j].ImportPath
	})
	return packages, nil
}

// packageInfo builds the PackageInfo for the package directory at dir.
func (s *Scanner) packageInfo(dir string) (PackageInfo, error) {
	rel, err := filepath.Rel(s.rootDir, dir)
	if err != nil {
		return PackageInfo{}, err
	}
	rel = filepath.ToSlash(rel)

	return PackageInfo{
		Dir:        rel,
		ImportPath: rel,
		URL:        s.deriveURL(rel),
	}, nil
}

// deriveURL converts a package directory (relative to the scan root) into
// its URL: the application directory prefix is stripped, and every _name_
// segment is rewritten to the {name} token form.
func (s *Scanner) deriveURL(rel string) string {
	url := rel
	if s.appDir != "" {
		url = strings.TrimPrefix(url, path.Clean(filepath.ToSlash(s.appDir)))
		url = strings.TrimPrefix(url, "/")
	}
	if url == "." || url == "" {
		return "/"
	}

	segments := strings.Split(url, "/")
	for i, seg := range segments {
		segments[i] = segmentToken(seg)
	}
	return "/" + strings.Join(segments, "/")
}

// segmentToken rewrites a _name_ directory segment to the {name} dynamic
// token. Other segments pass through unchanged.
func segmentToken(seg string) string {
	if len(seg) > 2 && seg[0] == '_' && seg[len(seg)-1] == '_' {
		return "{" + seg[1:len(seg)-1] + "}"
	}
	return seg
}

// excludedSegment reports whether a path segment takes its directory out
// of the application: an underscore prefix without the closing underscore,
// or a leading dot.
func excludedSegment(seg string) bool {
	if strings.HasPrefix(seg, ".") {
		return true
	}
	return strings.HasPrefix(seg, "_") && !strings.HasSuffix(seg, "_")
}
