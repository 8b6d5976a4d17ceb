// Package tsconfig loads module aliases from tsconfig.json or jsconfig.json.
package tsconfig

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/orphans/pkg/policy"
)

// maxExtendsDepth bounds `extends` chains.
const maxExtendsDepth = 8

// delim keeps dotted and slashed `paths` keys intact.
const delim = "|"

// Aliases is the alias table of a project.
type Aliases struct {
	// Source is the project config the table was read from, empty if none.
	Source string
	// BaseURL is project-relative; only meaningful when HasBaseURL is set.
	BaseURL    string
	HasBaseURL bool
	Rules      []Rule
}

// Empty returns an alias table that resolves nothing.
func Empty() *Aliases {
	return &Aliases{}
}

// Lookup returns the candidate paths for spec from the best matching rule.
// TypeScript consults only that rule, trying its targets in order.
func (a *Aliases) Lookup(spec string) ([]string, bool) {
	if a == nil {
		return nil, false
	}
	for _, r := range a.Rules {
		if capture, ok := r.Match(spec); ok {
			return r.Expand(capture), true
		}
	}
	return nil, false
}

// compilerOptions is the part of a project config that matters here.
type compilerOptions struct {
	BaseURL string              `koanf:"baseUrl"`
	Paths   map[string][]string `koanf:"paths"`
}

// layer is one file of an extends chain.
type layer struct {
	file       string
	dir        string
	opts       compilerOptions
	hasBaseURL bool
	hasPaths   bool
	extends    string
}

// Load reads the first existing file among names on fsys. A missing config
// yields an empty table. Malformed configs go through pol.
func Load(fsys billy.Filesystem, names []string, pol *policy.Policy) (*Aliases, error) {
	for _, name := range names {
		if _, err := fsys.Stat(name); err != nil {
			continue
		}
		aliases, err := loadChain(fsys, name)
		if err != nil {
			if rerr := pol.Recover("load project config", name, err); rerr != nil {
				return nil, rerr
			}
			return Empty(), nil
		}
		return aliases, nil
	}
	return Empty(), nil
}

func loadChain(fsys billy.Filesystem, name string) (*Aliases, error) {
	var chain []layer
	seen := make(map[string]bool)

	file := path.Clean(name)
	for depth := 0; ; depth++ {
		if depth >= maxExtendsDepth {
			return nil, fmt.Errorf("extends chain deeper than %d", maxExtendsDepth)
		}
		if seen[file] {
			return nil, fmt.Errorf("extends cycle at %s", file)
		}
		seen[file] = true

		l, err := readLayer(fsys, file)
		if err != nil {
			return nil, err
		}
		chain = append(chain, l)

		next, ok := extendsPath(fsys, l)
		if !ok {
			break
		}
		file = next
	}

	return merge(name, chain), nil
}

func readLayer(fsys billy.Filesystem, file string) (layer, error) {
	k := koanf.New(delim)
	if err := k.Load(Provider(fsys, file), Parser()); err != nil {
		return layer{}, fmt.Errorf("parse %s: %w", file, err)
	}

	l := layer{
		file:       file,
		dir:        path.Dir(file),
		extends:    k.String("extends"),
		hasBaseURL: k.Exists("compilerOptions" + delim + "baseUrl"),
		hasPaths:   k.Exists("compilerOptions" + delim + "paths"),
	}
	if k.Exists("compilerOptions") {
		if err := k.Unmarshal("compilerOptions", &l.opts); err != nil {
			return layer{}, fmt.Errorf("decode %s: %w", file, err)
		}
	}
	return l, nil
}

// extendsPath resolves a relative extends reference. Package references are not followed.
func extendsPath(fsys billy.Filesystem, l layer) (string, bool) {
	ext := l.extends
	if ext == "" || !(strings.HasPrefix(ext, "./") || strings.HasPrefix(ext, "../")) {
		return "", false
	}
	p := path.Join(l.dir, ext)
	if _, err := fsys.Stat(p); err == nil {
		return p, true
	}
	if !strings.HasSuffix(p, ".json") {
		if _, err := fsys.Stat(p + ".json"); err == nil {
			return p + ".json", true
		}
	}
	return p, true
}

// merge applies TypeScript's precedence: the nearest config defining an option wins.
// Path targets resolve against baseUrl when set, else against the defining config.
func merge(source string, chain []layer) *Aliases {
	a := &Aliases{Source: source}

	var paths *layer
	for i := range chain {
		l := &chain[i]
		if !a.HasBaseURL && l.hasBaseURL {
			a.HasBaseURL = true
			a.BaseURL = rootRelative(l.dir, l.opts.BaseURL)
		}
		if paths == nil && l.hasPaths {
			paths = l
		}
	}
	if paths == nil {
		return a
	}

	base := paths.dir
	if a.HasBaseURL {
		base = a.BaseURL
	}

	patterns := make([]string, 0, len(paths.opts.Paths))
	for p := range paths.opts.Paths {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, p := range patterns {
		targets := make([]string, 0, len(paths.opts.Paths[p]))
		for _, t := range paths.opts.Paths[p] {
			targets = append(targets, rootRelative(base, t))
		}
		a.Rules = append(a.Rules, NewRule(p, targets))
	}
	sortRules(a.Rules)
	return a
}

// rootRelative joins p onto dir. A leading slash means the project root.
func rootRelative(dir, p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return path.Clean(strings.TrimPrefix(p, "/"))
	}
	return path.Join(dir, p)
}
