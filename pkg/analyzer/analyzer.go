package analyzer

import "context"

// FileAnalyzer analyzes a set of project files. Paths are slash-separated and
// relative to the project root.
type FileAnalyzer[T any] interface {
	// Analyze processes files and returns the result. Cancelling ctx stops
	// the work, and a Tracker carried by ctx receives one tick per file.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
