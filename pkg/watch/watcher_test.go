package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/orphans/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, root string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(root, config.DefaultConfig(), debounce)
	require.NoError(t, err)
	w.SetStatusWriter(&syncBuffer{})
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, DefaultDebounce},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, DefaultDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tmpDir, tt.debounce)
			assert.NotNil(t, w.fsWatcher)
			assert.NotNil(t, w.pending)
			assert.Equal(t, tmpDir, w.root)
			assert.Equal(t, tt.want, w.debounce)
		})
	}
}

func TestWatcher_handleEvent(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, time.Second)

	tests := []struct {
		name    string
		path    string
		op      fsnotify.Op
		pending bool
	}{
		{"source write", filepath.Join(root, "src", "lib", "og.ts"), fsnotify.Write, true},
		{"source create", filepath.Join(root, "src", "app", "page.tsx"), fsnotify.Create, true},
		{"source remove", filepath.Join(root, "src", "lib", "old.ts"), fsnotify.Remove, true},
		{"stylesheet rename", filepath.Join(root, "src", "app", "globals.css"), fsnotify.Rename, true},
		{"chmod ignored", filepath.Join(root, "src", "lib", "og.ts"), fsnotify.Chmod, false},
		{"unknown extension", filepath.Join(root, "src", "logo.png"), fsnotify.Write, false},
		{"excluded dir", filepath.Join(root, "src", "node_modules", "x.ts"), fsnotify.Write, false},
		{"outside source", filepath.Join(root, "scripts", "build.ts"), fsnotify.Write, false},
		{"project config", filepath.Join(root, "tsconfig.json"), fsnotify.Write, true},
		{"other root file", filepath.Join(root, "package.json"), fsnotify.Write, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.mu.Lock()
			w.pending = make(map[string]time.Time)
			w.mu.Unlock()

			w.handleEvent(fsnotify.Event{Name: tt.path, Op: tt.op})

			w.mu.Lock()
			_, ok := w.pending[tt.path]
			w.mu.Unlock()
			assert.Equal(t, tt.pending, ok)
		})
	}
}

func TestWatcher_processPending(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 10*time.Millisecond)

	var got [][]string
	w.SetCallback(func(paths []string) {
		got = append(got, paths)
	})

	b := filepath.Join(root, "src", "b.ts")
	a := filepath.Join(root, "src", "a.ts")
	past := time.Now().Add(-time.Second)
	w.pending[b] = past
	w.pending[a] = past

	w.processPending()

	require.Len(t, got, 1)
	assert.Equal(t, []string{a, b}, got[0])
	assert.Empty(t, w.pending)
}

func TestWatcher_processPending_NotReady(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, time.Hour)

	called := false
	w.SetCallback(func([]string) { called = true })

	path := filepath.Join(root, "src", "a.ts")
	w.pending[path] = time.Now()
	w.processPending()

	assert.False(t, called)
	assert.Contains(t, w.pending, path)
}

func TestWatcher_processPending_NoCallback(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 10*time.Millisecond)

	path := filepath.Join(root, "src", "a.ts")
	w.pending[path] = time.Now().Add(-time.Second)
	w.processPending()

	assert.NotContains(t, w.pending, path)
}

func TestWatcher_Debounce(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 200*time.Millisecond)

	var calls int32
	w.SetCallback(func([]string) { atomic.AddInt32(&calls, 1) })

	path := filepath.Join(root, "src", "a.ts")
	for i := 0; i < 5; i++ {
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
		time.Sleep(10 * time.Millisecond)
	}

	w.processPending()
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "still inside the debounce window")

	time.Sleep(250 * time.Millisecond)
	w.processPending()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWatcher_Start_Context(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestWatcher_Start_SkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "node_modules", "pkg"), 0o755))

	w := newTestWatcher(t, root, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(w.WatchedDirs()) >= 3
	}, time.Second, 10*time.Millisecond)

	watched := w.WatchedDirs()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, filepath.Join(root, "src"))
	assert.Contains(t, watched, filepath.Join(root, "src", "lib"))
	for _, dir := range watched {
		assert.NotEqual(t, "node_modules", filepath.Base(dir))
	}
}

func TestWatcher_Start_FileChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	w := newTestWatcher(t, root, 50*time.Millisecond)

	var mu sync.Mutex
	var seen []string
	w.SetCallback(func(paths []string) {
		mu.Lock()
		seen = append(seen, paths...)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(w.WatchedDirs()) >= 2
	}, time.Second, 10*time.Millisecond)

	file := filepath.Join(root, "src", "orphan.ts")
	require.NoError(t, os.WriteFile(file, []byte("export const x = 1\n"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range seen {
			if p == file {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_Start_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	w := newTestWatcher(t, root, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(w.WatchedDirs()) >= 2
	}, time.Second, 10*time.Millisecond)

	dir := filepath.Join(root, "src", "features")
	require.NoError(t, os.Mkdir(dir, 0o755))

	assert.Eventually(t, func() bool {
		for _, d := range w.WatchedDirs() {
			if d == dir {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_ConcurrentHandleEvent(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				w.handleEvent(fsnotify.Event{
					Name: filepath.Join(root, "src", "a.ts"),
					Op:   fsnotify.Write,
				})
			}
		}()
	}
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.pending, 1)
}

func TestDigestChanged(t *testing.T) {
	var d Digest
	assert.True(t, d.Changed([]byte(`{"unused": []}`)), "first report always prints")
	assert.False(t, d.Changed([]byte(`{"unused": []}`)))
	assert.True(t, d.Changed([]byte(`{"unused": ["src/c.ts"]}`)))
	assert.False(t, d.Changed([]byte(`{"unused": ["src/c.ts"]}`)))
}
