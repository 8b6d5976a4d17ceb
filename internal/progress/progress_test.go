package progress

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalNonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestDisabledTrackerIsSilent(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker(&buf, "Extracting imports", 10, false)
	assert.False(t, tr.Enabled())

	tr.Tick()
	tr.FinishSuccess()
	assert.Empty(t, buf.String())
}

func TestFinishErrorReports(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker(&buf, "Extracting imports", 1, false)
	tr.FinishError(errors.New("denied"))
	assert.Equal(t, "  Extracting imports error: denied\n", buf.String())
}

func TestEnabledTrackerConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker(&buf, "Extracting imports", 100, true)
	assert.True(t, tr.Enabled())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Tick()
		}()
	}
	wg.Wait()
	tr.FinishSuccess()

	assert.Equal(t, int64(100), tr.bar.State().CurrentNum)
}
