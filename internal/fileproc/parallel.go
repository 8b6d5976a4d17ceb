// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// sort orders errors by path so the first error is stable across runs.
func (e *ProcessingErrors) sort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	sort.Slice(e.Errors, func(i, j int) bool { return e.Errors[i].Path < e.Errors[j].Path })
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc is called when a file processing error occurs.
type ErrorFunc func(path string, err error)

// Options configures MapFiles.
type Options struct {
	// Workers bounds concurrency. Zero or less means 2x NumCPU.
	Workers    int
	OnProgress ProgressFunc
	OnError    ErrorFunc
}

// Workers returns the effective worker count for a configured value.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return n
}

// MapFiles runs fn over files in parallel. The result slice is aligned with
// files: results[i] belongs to files[i], and holds the zero value when fn failed.
// Files are not started once ctx is done; the context error is then returned.
// Otherwise a *ProcessingErrors is returned when any file failed.
func MapFiles[T any](ctx context.Context, files []string, fn func(context.Context, string) (T, error), opts Options) ([]T, error) {
	results := make([]T, len(files))
	if len(files) == 0 {
		return results, nil
	}

	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(Workers(opts.Workers)).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return nil
			}

			result, err := fn(ctx, path)
			if err != nil {
				errs.Add(path, err)
				if opts.OnError != nil {
					opts.OnError(path, err)
				}
			} else {
				results[i] = result
			}

			if opts.OnProgress != nil {
				opts.OnProgress()
			}
			return nil
		})
	}
	_ = p.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	if errs.HasErrors() {
		errs.sort()
		return results, errs
	}
	return results, nil
}
