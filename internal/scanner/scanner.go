package scanner

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/panbanda/orphans/pkg/policy"
)

// ErrNoSourceDir is returned when the configured source root does not exist.
var ErrNoSourceDir = errors.New("no source directory found")

// Scanner finds candidate files in a project filesystem.
type Scanner struct {
	fs      billy.Filesystem
	config  *config.Config
	policy  *policy.Policy
	matcher gitignore.Matcher
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithPolicy sets the error policy. Defaults to best-effort.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Scanner) {
		s.policy = p
	}
}

// NewScanner creates a scanner over fs, which must be rooted at the project directory.
func NewScanner(fs billy.Filesystem, cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{fs: fs, config: cfg, policy: &policy.Policy{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadIgnorePatterns reads every .gitignore in the project when enabled.
func (s *Scanner) loadIgnorePatterns() error {
	s.matcher = nil
	if !s.config.Source.Gitignore {
		return nil
	}
	patterns, err := gitignore.ReadPatterns(s.fs, nil)
	if err != nil {
		return s.policy.Recover("read gitignore", ".gitignore", err)
	}
	if len(patterns) > 0 {
		s.matcher = gitignore.NewMatcher(patterns)
	}
	return nil
}

func (s *Scanner) isIgnored(rel string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	return s.matcher.Match(strings.Split(rel, "/"), isDir)
}

// ScanSource scans the configured source root.
func (s *Scanner) ScanSource() ([]string, error) {
	return s.ScanDir(s.config.Source.Root)
}

// ScanDir recursively collects candidate files under root. Returned paths are
// project-relative, forward-slash separated and sorted.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	root = path.Clean(filepath.ToSlash(root))

	info, err := s.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSourceDir, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoSourceDir, root)
	}

	if err := s.loadIgnorePatterns(); err != nil {
		return nil, err
	}

	files := make([]string, 0, 256)

	walkErr := util.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
		rel := filepath.ToSlash(p)
		if err != nil {
			if rerr := s.policy.Recover("walk", rel, err); rerr != nil {
				return rerr
			}
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if rel != root && (s.config.IsExcludedDir(info.Name()) || s.isIgnored(rel, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := s.fs.Stat(p)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		}

		if s.accepts(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) accepts(rel string) bool {
	return s.config.HasAllowedExtension(rel) &&
		!s.config.IsDeclaration(rel) &&
		!s.isIgnored(rel, false)
}

// ScanFile reports whether a single project-relative path would be a candidate.
func (s *Scanner) ScanFile(p string) (bool, error) {
	rel := path.Clean(filepath.ToSlash(p))

	info, err := s.fs.Stat(rel)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	root := path.Clean(filepath.ToSlash(s.config.Source.Root))
	inner := rel
	if root != "." {
		if !strings.HasPrefix(rel, root+"/") {
			return false, nil
		}
		inner = strings.TrimPrefix(rel, root+"/")
	}
	for _, dir := range strings.Split(path.Dir(inner), "/") {
		if s.config.IsExcludedDir(dir) {
			return false, nil
		}
	}

	return s.accepts(rel), nil
}
