// Package orphans finds source files that no framework entry point reaches
// through imports.
package orphans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/panbanda/orphans/internal/cache"
	"github.com/panbanda/orphans/internal/fileproc"
	"github.com/panbanda/orphans/internal/scanner"
	"github.com/panbanda/orphans/pkg/analyzer"
	"github.com/panbanda/orphans/pkg/analyzer/graph"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/panbanda/orphans/pkg/imports"
	"github.com/panbanda/orphans/pkg/models"
	"github.com/panbanda/orphans/pkg/policy"
	"github.com/panbanda/orphans/pkg/resolve"
	"github.com/panbanda/orphans/pkg/tsconfig"
)

// Result is the outcome of one analysis.
type Result struct {
	Report *models.Report
	Graph  *graph.Graph
	Roots  []string
	// Aliases is the alias table the run resolved with.
	Aliases *tsconfig.Aliases
}

// Analyzer runs the reachability analysis over a project filesystem.
type Analyzer struct {
	fs      billy.Filesystem
	config  *config.Config
	policy  *policy.Policy
	logger  *slog.Logger
	imports imports.Scanner
	cache   *cache.Cache

	ownsImports bool
}

// Compile-time check that Analyzer implements analyzer.FileAnalyzer[*Result]
var _ analyzer.FileAnalyzer[*Result] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithConfig sets the configuration. Defaults to config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		if cfg != nil {
			a.config = cfg
		}
	}
}

// WithLogger sets the logger used for recovered errors.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithPolicy overrides the policy derived from the config's strict flag.
func WithPolicy(p *policy.Policy) Option {
	return func(a *Analyzer) {
		a.policy = p
	}
}

// WithImportScanner uses s instead of the scanner named in the config. The
// caller keeps ownership of s.
func WithImportScanner(s imports.Scanner) Option {
	return func(a *Analyzer) {
		a.imports = s
	}
}

// WithCache caches extracted specifiers by file content.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// New creates an analyzer over fs, which must be rooted at the project directory.
func New(fs billy.Filesystem, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		fs:     fs,
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.policy == nil {
		a.policy = &policy.Policy{Strict: a.config.Mode.Strict, Logger: a.logger}
	}

	if a.imports == nil {
		s, err := imports.New(a.config.Scanner.Kind)
		if err != nil {
			return nil, err
		}
		a.imports = s
		a.ownsImports = true
	}

	return a, nil
}

// Open creates an analyzer over the project directory dir on disk. Paths
// outside dir are not reachable through the filesystem.
func Open(dir string, opts ...Option) (*Analyzer, error) {
	return New(osfs.New(dir, osfs.WithBoundOS()), opts...)
}

// Close releases the import scanner when the analyzer created it.
func (a *Analyzer) Close() {
	if a.ownsImports {
		a.imports.Close()
	}
}

// Run walks the source root and analyzes every candidate found.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	walker := scanner.NewScanner(a.fs, a.config, scanner.WithPolicy(a.policy))
	files, err := walker.ScanSource()
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, files)
}

// Analyze builds the import graph over files and reports which of them no root reaches.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Result, error) {
	aliases, err := tsconfig.Load(a.fs, a.config.Resolve.ProjectConfigs, a.policy)
	if err != nil {
		return nil, err
	}
	resolver := resolve.New(a.fs, a.config, aliases, resolve.WithPolicy(a.policy))

	g := graph.New(files)
	paths := g.Paths()

	specs, err := a.extractAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	for i, from := range paths {
		for _, spec := range specs[i] {
			if to, ok := resolver.Resolve(from, spec); ok {
				g.AddEdge(from, to)
			}
		}
	}
	if errs := resolver.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("resolve imports: %w", errors.Join(errs...))
	}

	roots := a.Roots(paths)
	reach := g.Reachable(roots)

	unused := make([]string, 0)
	for _, p := range paths {
		if !reach.Contains(p) && a.reportable(p) {
			unused = append(unused, p)
		}
	}

	a.logger.Debug("analysis complete",
		"candidates", g.Len(),
		"edges", g.EdgeCount(),
		"roots", len(roots),
		"reachable", reach.Len(),
		"unused", len(unused))

	return &Result{
		Report:  models.NewReport(roots, reach.Len(), g.Len(), unused),
		Graph:   g,
		Roots:   roots,
		Aliases: aliases,
	}, nil
}

// extractAll scans every file in parallel. The result is aligned with paths.
func (a *Analyzer) extractAll(ctx context.Context, paths []string) ([][]string, error) {
	s := a.imports
	if a.cache.Enabled() {
		s = &cachedScanner{inner: s, cache: a.cache, name: a.config.Scanner.Kind, logger: a.logger}
	}

	tracker := analyzer.TrackerFromContext(ctx)
	tracker.Start(len(paths))

	specs, err := fileproc.MapFiles(ctx, paths, func(ctx context.Context, p string) ([]string, error) {
		out, err := imports.Extract(a.fs, p, s, a.policy)
		tracker.Tick(p)
		return out, err
	}, fileproc.Options{Workers: a.config.Scanner.Workers})
	if err != nil {
		return nil, fmt.Errorf("extract imports: %w", err)
	}
	return specs, nil
}

// Roots returns the candidates the framework loads directly: those matching an
// entry pattern, plus configured global stylesheets.
func (a *Analyzer) Roots(candidates []string) []string {
	globals := make(map[string]bool, len(a.config.Entry.GlobalStylesheets))
	for _, s := range a.config.Entry.GlobalStylesheets {
		globals[strings.TrimPrefix(s, "./")] = true
	}

	roots := make([]string, 0)
	for _, p := range candidates {
		if globals[p] || a.isEntry(p) {
			roots = append(roots, p)
		}
	}
	return roots
}

func (a *Analyzer) isEntry(p string) bool {
	for _, pattern := range a.config.Entry.Patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// reportable applies the filter policy: declaration files and the types
// directory are never reported.
func (a *Analyzer) reportable(p string) bool {
	return !a.config.IsDeclaration(p) && !a.config.InTypesDir(p)
}

// cachedScanner serves specifiers from the cache when the file content is unchanged.
type cachedScanner struct {
	inner  imports.Scanner
	cache  *cache.Cache
	name   string
	logger *slog.Logger
}

func (c *cachedScanner) Scan(path string, content []byte, kind imports.Kind) []string {
	key := cache.Key(path, c.name)
	hash := cache.HashBytes(content)
	if specs, ok := c.cache.GetWithHash(key, hash); ok {
		return specs
	}

	specs := c.inner.Scan(path, content, kind)
	if err := c.cache.SetWithHash(key, hash, specs); err != nil {
		c.logger.Debug("cache write failed", "path", path, "error", err)
	}
	return specs
}

func (c *cachedScanner) Close() {}
