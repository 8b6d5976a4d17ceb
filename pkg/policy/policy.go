// Package policy decides what happens to recoverable failures: unreadable
// directories and files, malformed project configs and probe errors.
package policy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// OpError records a recoverable failure surfaced in strict mode.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Policy selects between best-effort and strict handling.
// The zero value is best-effort with logging discarded.
type Policy struct {
	Strict bool
	Logger *slog.Logger
}

// BestEffort returns a policy that logs and continues.
func BestEffort(logger *slog.Logger) *Policy {
	return &Policy{Logger: logger}
}

// StrictMode returns a policy that turns every recoverable failure into an error.
func StrictMode(logger *slog.Logger) *Policy {
	return &Policy{Strict: true, Logger: logger}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (p *Policy) logger() *slog.Logger {
	if p == nil || p.Logger == nil {
		return discard
	}
	return p.Logger
}

// Recover applies the policy to err. A nil err is always nil. In best-effort
// mode the failure is logged at debug level and nil is returned; in strict
// mode an *OpError is returned.
func (p *Policy) Recover(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if p != nil && p.Strict {
		var opErr *OpError
		if errors.As(err, &opErr) {
			return err
		}
		return &OpError{Op: op, Path: path, Err: err}
	}
	p.logger().Debug("skipped after recoverable error", "op", op, "path", path, "error", err)
	return nil
}

// IsStrict reports whether p is in strict mode.
func (p *Policy) IsStrict() bool {
	return p != nil && p.Strict
}
