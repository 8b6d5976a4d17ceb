// Package imports extracts raw import specifiers from source files.
package imports

import (
	"fmt"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/panbanda/orphans/pkg/policy"
)

// Scanner finds the import specifiers referenced by one file. Implementations
// must be safe for concurrent use and never fail: unparseable input yields
// whatever specifiers could be recovered.
type Scanner interface {
	Scan(path string, content []byte, kind Kind) []string
	Close()
}

// New returns the scanner named by kind.
func New(kind string) (Scanner, error) {
	switch kind {
	case config.ScannerRegex, "":
		return NewRegexScanner(), nil
	case config.ScannerTreeSitter:
		return NewTreeSitterScanner(), nil
	default:
		return nil, fmt.Errorf("unknown scanner %q", kind)
	}
}

// Extract reads path from fsys and scans it. Read failures go through pol.
func Extract(fsys billy.Filesystem, path string, s Scanner, pol *policy.Policy) ([]string, error) {
	kind := KindOf(path)
	if kind == KindOther {
		return []string{}, nil
	}

	content, err := util.ReadFile(fsys, path)
	if err != nil {
		if rerr := pol.Recover("read", path, err); rerr != nil {
			return nil, rerr
		}
		return []string{}, nil
	}

	return s.Scan(path, content, kind), nil
}

// normalize deduplicates and sorts specifiers, dropping empty ones.
func normalize(specs []string) []string {
	seen := make(map[string]struct{}, len(specs))
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
