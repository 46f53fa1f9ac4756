// Package module implements the filesystem resolution, caching, and
// native-module registration machinery that spec section 4.4 ("Modules")
// describes: the `.blade/libs` search path, the single-execution cache that
// keeps a repeat `import` from re-running a module's top-level code, and
// the registry native Go packages populate via Register in their init()
// functions.
package module

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"vellum/internal/gc"
	"vellum/internal/value"
)

// FieldDesc, FuncDesc and ClassDesc describe one exported binding of a
// native module, installed into its ObjModule.Values at registration time
// (spec section 6, "Native module registration record shape").
type FieldDesc struct {
	Name  string
	Value value.Value
}

type FuncDesc struct {
	Name string
	Fn   value.NativeFn
}

type ClassDesc struct {
	Name  string
	Class *value.ObjClass
}

// Registration is what internal/modules/* and internal/stdlib submit to
// Register from their init() functions. Name must match the `_`-prefixed
// path segment user code imports (e.g. "_socket" for `import _socket`).
type Registration struct {
	Name      string
	Fields    []FieldDesc
	Functions []FuncDesc
	Classes   []ClassDesc
	Preloader value.NativeFn
	Unloader  value.NativeFn
}

var (
	registryMu sync.Mutex
	registry   = map[string]Registration{}
)

// Register records a native module's exports. Safe to call from any
// package's init(); the loader only consults the registry at resolve time.
func Register(r Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[r.Name] = r
}

// Loader resolves import paths to source files or native registrations and
// caches the resulting ObjModule so a module's top-level code runs at most
// once per process (spec section 4.4: "never re-execute a module's
// top-level code on repeat import").
type Loader struct {
	gc            *gc.GC
	executableDir string
	searchPaths   []string
	importingDir  string // directory of the file currently being compiled

	mu    sync.Mutex
	cache map[string]*value.ObjModule

	group singleflight.Group
}

func NewLoader(g *gc.GC, executableDir string, searchPaths []string) *Loader {
	return &Loader{
		gc:            g,
		executableDir: executableDir,
		searchPaths:   searchPaths,
		cache:         make(map[string]*value.ObjModule),
	}
}

// SetImportingDir updates the base directory a leading `.`/`..` segment
// resolves against; the VM calls this before compiling each module so
// relative imports are resolved against the importing file, not cwd.
func (l *Loader) SetImportingDir(dir string) { l.importingDir = dir }

// IsNative reports whether a dotted import path names a native module (a
// leading `_` on the first segment).
func IsNative(path string) bool {
	return strings.HasPrefix(path, "_")
}

// Lookup finds a registered native module's Registration by the path used
// in `import _name`.
func Lookup(path string) (Registration, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	r, ok := registry[path]
	return r, ok
}

// Cached returns a previously loaded module for path, if any.
func (l *Loader) Cached(path string) (*value.ObjModule, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.cache[path]
	return m, ok
}

func (l *Loader) store(path string, m *value.ObjModule) {
	l.mu.Lock()
	l.cache[path] = m
	l.mu.Unlock()
}

// Once runs build exactly once per path even under concurrent callers,
// caching the result; repeat calls return the cached module.
func (l *Loader) Once(path string, build func() (*value.ObjModule, error)) (*value.ObjModule, error) {
	if m, ok := l.Cached(path); ok {
		return m, nil
	}
	v, err, _ := l.group.Do(path, func() (interface{}, error) {
		if m, ok := l.Cached(path); ok {
			return m, nil
		}
		m, err := build()
		if err != nil {
			return nil, err
		}
		l.store(path, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*value.ObjModule), nil
}

// Resolve implements spec section 4.4's path-resolution algorithm for
// script modules: cwd's .blade/libs, then the executable's libs/ and
// vendor/ roots, each tried as both <path>.b and <path>/index.b; a leading
// `.`/`..` segment resolves against the importing file's directory instead.
func (l *Loader) Resolve(path string) (absPath string, source []byte, err error) {
	rel := filepath.Join(strings.Split(path, ".")...)

	var roots []string
	if strings.HasPrefix(path, ".") {
		roots = []string{l.importingDir}
	} else {
		if cwd, err := os.Getwd(); err == nil {
			roots = append(roots, filepath.Join(cwd, ".blade", "libs"))
		}
		roots = append(roots,
			filepath.Join(l.executableDir, "libs"),
			filepath.Join(l.executableDir, "vendor"),
		)
		roots = append(roots, l.searchPaths...)
	}

	for _, root := range roots {
		candidates := []string{
			filepath.Join(root, rel+".b"),
			filepath.Join(root, rel, "index.b"),
		}
		for _, c := range candidates {
			if data, readErr := os.ReadFile(c); readErr == nil {
				return c, data, nil
			}
		}
	}
	return "", nil, &NotFoundError{Path: path}
}

type NotFoundError struct{ Path string }

func (e *NotFoundError) Error() string { return "module not found: " + e.Path }
