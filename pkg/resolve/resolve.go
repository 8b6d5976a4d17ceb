// Package resolve maps raw import specifiers to project files.
package resolve

import (
	"errors"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/panbanda/orphans/pkg/policy"
	"github.com/panbanda/orphans/pkg/tsconfig"
)

// Kind is the shape of a specifier.
type Kind string

const (
	// KindRelative is ./foo, ../bar, . and ..
	KindRelative Kind = "relative"
	// KindAbsolute is /foo, relative to the project root.
	KindAbsolute Kind = "absolute"
	// KindAlias matches a tsconfig `paths` pattern.
	KindAlias Kind = "alias"
	// KindBuiltin is a runtime namespace such as node:fs.
	KindBuiltin Kind = "builtin"
	// KindPackage is anything else, normally an npm package.
	KindPackage Kind = "package"
)

// scriptSources lists the TypeScript sources an emitted-extension import may refer to.
var scriptSources = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

type entry int

const (
	missing entry = iota
	regular
	directory
)

// Resolver resolves specifiers against a project filesystem. Safe for concurrent use.
type Resolver struct {
	fs         billy.Filesystem
	extensions []string
	builtins   []string
	aliases    *tsconfig.Aliases
	policy     *policy.Policy
	memo       *lru.Cache[string, entry]

	mu   sync.Mutex
	errs []error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy sets the policy for probe failures other than "not found".
func WithPolicy(p *policy.Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// New creates a resolver. A nil alias table resolves no aliases.
func New(fs billy.Filesystem, cfg *config.Config, aliases *tsconfig.Aliases, opts ...Option) *Resolver {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if aliases == nil {
		aliases = tsconfig.Empty()
	}
	r := &Resolver{
		fs:         fs,
		extensions: cfg.Source.Extensions,
		builtins:   cfg.Resolve.BuiltinPrefixes,
		aliases:    aliases,
		policy:     &policy.Policy{},
	}
	if cfg.Resolve.MemoSize > 0 {
		// Only fails for a non-positive size.
		r.memo, _ = lru.New[string, entry](cfg.Resolve.MemoSize)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify reports the shape of spec.
func (r *Resolver) Classify(spec string) Kind {
	spec = stripSuffix(spec)
	for _, prefix := range r.builtins {
		if strings.HasPrefix(spec, prefix) {
			return KindBuiltin
		}
	}
	switch {
	case spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../"):
		return KindRelative
	case strings.HasPrefix(spec, "/"):
		return KindAbsolute
	}
	if _, ok := r.aliases.Lookup(spec); ok {
		return KindAlias
	}
	return KindPackage
}

// Resolve returns the project file that spec, imported from the project-relative
// file from, refers to. It never fails; anything outside the project is unresolved.
func (r *Resolver) Resolve(from, spec string) (string, bool) {
	spec = stripSuffix(spec)
	if spec == "" {
		return "", false
	}

	switch r.Classify(spec) {
	case KindBuiltin:
		return "", false
	case KindRelative:
		return r.probe(path.Join(path.Dir(from), spec))
	case KindAbsolute:
		return r.probe(path.Clean(strings.TrimPrefix(spec, "/")))
	case KindAlias:
		candidates, _ := r.aliases.Lookup(spec)
		for _, c := range candidates {
			if p, ok := r.probe(c); ok {
				return p, true
			}
		}
	}

	if r.aliases.HasBaseURL {
		return r.probe(path.Join(r.aliases.BaseURL, spec))
	}
	return "", false
}

// Errors returns probe failures collected in strict mode.
func (r *Resolver) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// probe tries base, base+ext, emitted-extension swaps and base/index+ext, in that order.
func (r *Resolver) probe(base string) (string, bool) {
	if escapes(base) {
		return "", false
	}

	kind := r.stat(base)
	if kind == regular {
		return base, true
	}
	for _, ext := range r.extensions {
		if r.stat(base+ext) == regular {
			return base + ext, true
		}
	}
	if alts, ok := scriptSources[path.Ext(base)]; ok {
		stem := strings.TrimSuffix(base, path.Ext(base))
		for _, ext := range alts {
			if r.stat(stem+ext) == regular {
				return stem + ext, true
			}
		}
	}
	if kind == directory {
		for _, ext := range r.extensions {
			index := path.Join(base, "index"+ext)
			if r.stat(index) == regular {
				return index, true
			}
		}
	}
	return "", false
}

func (r *Resolver) stat(p string) entry {
	if r.memo != nil {
		if e, ok := r.memo.Get(p); ok {
			return e
		}
	}

	e := missing
	info, err := r.fs.Stat(p)
	switch {
	case err == nil && info.IsDir():
		e = directory
	case err == nil && info.Mode().IsRegular():
		e = regular
	case err != nil && !errors.Is(err, os.ErrNotExist):
		if rerr := r.policy.Recover("probe", p, err); rerr != nil {
			r.mu.Lock()
			r.errs = append(r.errs, rerr)
			r.mu.Unlock()
		}
	}

	if r.memo != nil {
		r.memo.Add(p, e)
	}
	return e
}

// stripSuffix drops ?query and #hash suffixes such as ./icon.svg?url.
// A leading # is a subpath import and is kept.
func stripSuffix(spec string) string {
	if i := strings.IndexAny(spec, "?#"); i > 0 {
		return spec[:i]
	}
	return spec
}

func escapes(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p)
}
