package main

import (
	"io"
	"sync"

	"github.com/panbanda/orphans/internal/progress"
)

// progressBar draws extraction progress once the file count is known.
type progressBar struct {
	once sync.Once
	bar  *progress.Tracker
}

// newProgressBar returns nil unless w is a terminal.
func newProgressBar(w io.Writer) *progressBar {
	if !progress.IsTerminal(w) {
		return nil
	}
	return &progressBar{}
}

func (p *progressBar) tick(current, total int, path string) {
	p.once.Do(func() {
		p.bar = progress.NewTracker("Extracting imports...", total)
	})
	p.bar.Tick()
}

func (p *progressBar) finish(err error) {
	if p == nil || p.bar == nil {
		return
	}
	if err != nil {
		p.bar.FinishError(err)
		return
	}
	p.bar.FinishSuccess()
}
