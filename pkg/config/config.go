package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for orphans.
type Config struct {
	// Source tree settings
	Source SourceConfig `koanf:"source" toml:"source"`

	// Entry point detection
	Entry EntryConfig `koanf:"entry" toml:"entry"`

	// Import specifier resolution
	Resolve ResolveConfig `koanf:"resolve" toml:"resolve"`

	// Report filtering
	Report ReportConfig `koanf:"report" toml:"report"`

	// Import scanner selection
	Scanner ScannerConfig `koanf:"scanner" toml:"scanner"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Error handling mode
	Mode ModeConfig `koanf:"mode" toml:"mode"`
}

// SourceConfig controls which files are candidates.
type SourceConfig struct {
	Root                string   `koanf:"root" toml:"root"`
	Extensions          []string `koanf:"extensions" toml:"extensions"`
	ExcludeDirs         []string `koanf:"exclude_dirs" toml:"exclude_dirs"`
	DeclarationPatterns []string `koanf:"declaration_patterns" toml:"declaration_patterns"`
	Gitignore           bool     `koanf:"gitignore" toml:"gitignore"`
}

// EntryConfig defines the files the hosting framework loads directly.
type EntryConfig struct {
	// Patterns are doublestar globs relative to the project root.
	Patterns          []string `koanf:"patterns" toml:"patterns"`
	GlobalStylesheets []string `koanf:"global_stylesheets" toml:"global_stylesheets"`
}

// ResolveConfig controls specifier resolution.
type ResolveConfig struct {
	ProjectConfigs  []string `koanf:"project_configs" toml:"project_configs"`
	BuiltinPrefixes []string `koanf:"builtin_prefixes" toml:"builtin_prefixes"`
	MemoSize        int      `koanf:"memo_size" toml:"memo_size"`
}

// ReportConfig controls which unreachable files are reported.
type ReportConfig struct {
	TypesDir     string `koanf:"types_dir" toml:"types_dir"`
	FailOnUnused bool   `koanf:"fail_on_unused" toml:"fail_on_unused"`
}

// ScannerConfig selects the import scanner implementation.
type ScannerConfig struct {
	Kind    string `koanf:"kind" toml:"kind"` // regex, treesitter
	Workers int    `koanf:"workers" toml:"workers"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // json, text, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// ModeConfig selects how recoverable failures are handled.
type ModeConfig struct {
	Strict bool `koanf:"strict" toml:"strict"`
}

// Scanner kinds.
const (
	ScannerRegex      = "regex"
	ScannerTreeSitter = "treesitter"
)

// DefaultConfig returns a config tuned for a Next.js project with sources under src/.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Root: "src",
			Extensions: []string{
				".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mdx", ".css", ".scss",
			},
			ExcludeDirs: []string{
				"node_modules",
				".next",
				".git",
				"dist",
				"build",
				"out",
				"coverage",
				".turbo",
				".vercel",
				"__fixtures__",
				"fixtures",
			},
			DeclarationPatterns: []string{"*.d.ts", "*.d.mts", "*.d.cts"},
			Gitignore:           false,
		},
		Entry: EntryConfig{
			Patterns: []string{
				"src/app/**/{page,layout,template,loading,error,global-error,not-found,default,route,opengraph-image,twitter-image,icon,apple-icon,sitemap,robots,manifest}.{ts,tsx,js,jsx,mjs,mdx}",
				"src/pages/**/*.{ts,tsx,js,jsx,mdx}",
				"src/{middleware,instrumentation}.{ts,js}",
			},
			GlobalStylesheets: []string{"src/app/globals.css"},
		},
		Resolve: ResolveConfig{
			ProjectConfigs:  []string{"tsconfig.json", "jsconfig.json"},
			BuiltinPrefixes: []string{"node:", "bun:"},
			MemoSize:        4096,
		},
		Report: ReportConfig{
			TypesDir:     "src/types",
			FailOnUnused: false,
		},
		Scanner: ScannerConfig{
			Kind:    ScannerRegex,
			Workers: 0,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".orphans/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "json",
			Color:  true,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parserFor picks a koanf parser from the file extension, defaulting to TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// configNames are the file names searched for, in order.
var configNames = []string{
	"orphans.toml",
	"orphans.yaml",
	"orphans.yml",
	"orphans.json",
	".orphans.toml",
	".orphans.yaml",
	".orphans.yml",
	".orphans.json",
}

// searchDirs are the directories searched for config files.
var searchDirs = []string{".", ".orphans"}

// LoadResult is a loaded configuration and where it came from.
type LoadResult struct {
	Config *Config
	// Source is the config file path, empty when defaults were used.
	Source string
}

type loadOptions struct {
	path string
	dir  string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads from an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches for config files relative to dir instead of the working directory.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads an explicit config file, or the first one found in the standard
// locations. An explicit path that cannot be loaded is an error; when searching, the
// first existing file must parse.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dir: "."}
	for _, opt := range opts {
		opt(o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", o.path, err)
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			p := filepath.Join(o.dir, dir, name)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			cfg, err := Load(p)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", p, err)
			}
			return &LoadResult{Config: cfg, Source: p}, nil
		}
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// Validate reports invalid values.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Source.Root) == "" {
		errs = append(errs, errors.New("source.root must not be empty"))
	}
	if len(c.Source.Extensions) == 0 {
		errs = append(errs, errors.New("source.extensions must not be empty"))
	}
	for _, ext := range c.Source.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("source.extensions: %q must start with a dot", ext))
		}
	}
	for _, p := range c.Source.DeclarationPatterns {
		if _, err := path.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("source.declaration_patterns: %q: %w", p, err))
		}
	}
	for _, p := range c.Entry.Patterns {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("entry.patterns: %q is not a valid glob", p))
		}
	}
	switch c.Scanner.Kind {
	case ScannerRegex, ScannerTreeSitter:
	default:
		errs = append(errs, fmt.Errorf("scanner.kind: unknown scanner %q (want regex or treesitter)", c.Scanner.Kind))
	}
	if c.Scanner.Workers < 0 {
		errs = append(errs, fmt.Errorf("scanner.workers must be >= 0 (got %d)", c.Scanner.Workers))
	}
	if c.Resolve.MemoSize < 0 {
		errs = append(errs, fmt.Errorf("resolve.memo_size must be >= 0 (got %d)", c.Resolve.MemoSize))
	}

	return errors.Join(errs...)
}

// IsExcludedDir reports whether a directory name is excluded from the walk.
func (c *Config) IsExcludedDir(name string) bool {
	for _, dir := range c.Source.ExcludeDirs {
		if name == dir {
			return true
		}
	}
	return false
}

// HasAllowedExtension reports whether p has an extension from the allow-list.
func (c *Config) HasAllowedExtension(p string) bool {
	ext := path.Ext(p)
	for _, allowed := range c.Source.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// IsDeclaration reports whether p is a type declaration file.
func (c *Config) IsDeclaration(p string) bool {
	base := path.Base(filepath.ToSlash(p))
	for _, pattern := range c.Source.DeclarationPatterns {
		if matched, _ := path.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// InTypesDir reports whether the project-relative path p lives under the types directory.
func (c *Config) InTypesDir(p string) bool {
	dir := strings.Trim(filepath.ToSlash(c.Report.TypesDir), "/")
	if dir == "" {
		return false
	}
	p = filepath.ToSlash(p)
	return p == dir || strings.HasPrefix(p, dir+"/")
}
