package module

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"vellum/internal/gc"
	"vellum/internal/value"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return NewLoader(gc.New(1<<20), t.TempDir(), nil)
}

func TestOnceCachesResult(t *testing.T) {
	l := newTestLoader(t)
	calls := 0
	build := func() (*value.ObjModule, error) {
		calls++
		return value.NewModule("m", "m.b"), nil
	}

	m1, err := l.Once("m", build)
	require.NoError(t, err)
	m2, err := l.Once("m", build)
	require.NoError(t, err)

	require.Same(t, m1, m2)
	require.Equal(t, 1, calls, "a second import of the same path must not re-run top-level code")
}

// TestOnceDedupesConcurrentFirstImport exercises the singleflight-backed
// guarantee: many goroutines racing to import the same never-yet-loaded
// path must see build() run exactly once.
func TestOnceDedupesConcurrentFirstImport(t *testing.T) {
	l := newTestLoader(t)

	var calls int32Counter
	ready := make(chan struct{})
	build := func() (*value.ObjModule, error) {
		<-ready
		calls.inc()
		return value.NewModule("m", "m.b"), nil
	}

	const n = 20
	var wg sync.WaitGroup
	results := make([]*value.ObjModule, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := l.Once("concurrent", build)
			require.NoError(t, err)
			results[i] = m
		}(i)
	}
	close(ready)
	wg.Wait()

	require.EqualValues(t, 1, calls.get())
	for _, m := range results {
		require.Same(t, results[0], m)
	}
}

type int32Counter struct {
	mu sync.Mutex
	n  int
}

func (c *int32Counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *int32Counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestOnceReturnsBuildError(t *testing.T) {
	l := newTestLoader(t)
	wantErr := &NotFoundError{Path: "missing"}
	_, err := l.Once("missing", func() (*value.ObjModule, error) {
		return nil, wantErr
	})
	require.Equal(t, wantErr, err)

	// A failed build must not be cached: a later call retries.
	calls := 0
	_, err = l.Once("missing", func() (*value.ObjModule, error) {
		calls++
		return value.NewModule("missing", "missing.b"), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestIsNative(t *testing.T) {
	require.True(t, IsNative("_socket"))
	require.False(t, IsNative("socket"))
}

func TestRegisterAndLookup(t *testing.T) {
	Register(Registration{Name: "_testmod123", Functions: []FuncDesc{{Name: "f"}}})
	r, ok := Lookup("_testmod123")
	require.True(t, ok)
	require.Equal(t, "_testmod123", r.Name)
	require.Len(t, r.Functions, 1)

	_, ok = Lookup("_doesnotexist123")
	require.False(t, ok)
}

func TestResolveFindsFileCandidate(t *testing.T) {
	execDir := t.TempDir()
	libDir := filepath.Join(execDir, "libs")
	require.NoError(t, os.MkdirAll(libDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "foo.b"), []byte("echo 1"), 0o644))

	l := NewLoader(gc.New(1<<20), execDir, nil)
	path, src, err := l.Resolve("foo")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(libDir, "foo.b"), path)
	require.Equal(t, "echo 1", string(src))
}

func TestResolveFindsIndexCandidate(t *testing.T) {
	execDir := t.TempDir()
	pkgDir := filepath.Join(execDir, "vendor", "bar")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "index.b"), []byte("echo 2"), 0o644))

	l := NewLoader(gc.New(1<<20), execDir, nil)
	path, src, err := l.Resolve("bar")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(pkgDir, "index.b"), path)
	require.Equal(t, "echo 2", string(src))
}

func TestResolveRelativeImportUsesImportingDir(t *testing.T) {
	importerDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(importerDir, "sibling.b"), []byte("echo 3"), 0o644))

	l := NewLoader(gc.New(1<<20), t.TempDir(), nil)
	l.SetImportingDir(importerDir)
	path, src, err := l.Resolve(".sibling")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(importerDir, "sibling.b"), path)
	require.Equal(t, "echo 3", string(src))
}

func TestResolveNotFound(t *testing.T) {
	l := NewLoader(gc.New(1<<20), t.TempDir(), nil)
	_, _, err := l.Resolve("nosuch")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}
