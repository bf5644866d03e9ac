package codebase

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/parser"
	"github.com/dhamidi/codedom/csharp/resolve"
)

var log = commonlog.GetLogger("codedom.codebase")

// Codebase holds the parsed units of a source tree. All units declare
// into one shared registry, so a type in one file is visible from every
// other file.
type Codebase struct {
	mu       sync.RWMutex
	rootDir  string
	config   Config
	registry *ast.Registry
	files    map[string]*FileInfo
}

type FileInfo struct {
	Path    string
	Content []byte
	Hash    Digest
	Unit    *ast.CompilationUnit
}

// Digest identifies file content.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return fmt.Sprintf("%x", d[:])
}

func New(rootDir string, opts ...Option) *Codebase {
	c := &Codebase{
		rootDir:  rootDir,
		config:   DefaultConfig(),
		registry: ast.NewRegistry(),
		files:    make(map[string]*FileInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*Codebase)

func WithConfig(cfg Config) Option {
	return func(c *Codebase) {
		c.config = cfg
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) Config() Config {
	return c.config
}

func (c *Codebase) Registry() *ast.Registry {
	return c.registry
}

// ScanAll loads every source file below the root directory. Files are
// parsed in parallel, then resolved one after the other. Cancelling ctx
// stops the load between files.
func (c *Codebase) ScanAll(ctx context.Context) error {
	paths, err := Discover(c.rootDir, c.config.Check.Exclude)
	if err != nil {
		return err
	}
	return c.Load(ctx, paths)
}

// Load reads and parses the given files and resolves the whole codebase.
func (c *Codebase) Load(ctx context.Context, paths []string) error {
	return c.LoadWithProgress(ctx, paths, nil)
}

// LoadWithProgress is Load calling progress after each file is parsed.
// progress may be called from several goroutines at once.
func (c *Codebase) LoadWithProgress(ctx context.Context, paths []string, progress func(path string)) error {
	jobs := c.config.Check.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	parsed := make([]*FileInfo, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			f, err := c.parse(path, content)
			if err != nil {
				return err
			}
			parsed[i] = f
			if progress != nil {
				progress(path)
			}
			return nil
		})
	}
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	var changed []*FileInfo
	for _, f := range parsed {
		if f == nil {
			continue
		}
		if old := c.files[f.Path]; old != nil {
			c.unloadLocked(old)
		}
		c.files[f.Path] = f
		changed = append(changed, f)
	}
	c.invalidateLocked(changed...)
	c.resolveLocked()
	log.Infof("loaded %d files from %s", len(changed), c.rootDir)
	return err
}

func (c *Codebase) parse(path string, content []byte) (*FileInfo, error) {
	cu, err := parser.Parse(content, parser.WithFile(path), parser.WithRegistry(c.registry))
	if err != nil {
		return nil, err
	}
	return &FileInfo{Path: path, Content: content, Hash: sha256.Sum256(content), Unit: cu}, nil
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.UpdateFile(path, content)
}

// UpdateFile replaces the content of path, reparses it and brings the
// bindings of every unit up to date. Unchanged content is ignored.
func (c *Codebase) UpdateFile(path string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateFileLocked(path, content)
}

func (c *Codebase) updateFileLocked(path string, content []byte) error {
	old := c.files[path]
	if old != nil && old.Hash == sha256.Sum256(content) {
		return nil
	}
	if old != nil {
		c.unloadLocked(old)
	}
	f, err := c.parse(path, content)
	if err != nil {
		return err
	}
	c.files[path] = f
	c.invalidateLocked(f)
	c.resolveLocked()
	return nil
}

// RemoveFile unloads path. Its declarations leave the registry, and
// names elsewhere that were bound to them are resolved again.
func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.files[path]
	if f == nil {
		return
	}
	c.unloadLocked(f)
	c.resolveLocked()
}

// unloadLocked sweeps f out of the registry and resets references to its
// declarations in the remaining units.
func (c *Codebase) unloadLocked(f *FileInfo) {
	delete(c.files, f.Path)
	c.registry.RemoveUnit(f.Unit)
	for _, other := range c.files {
		resolve.Invalidate(other.Unit, func(sym ast.Symbol) bool {
			return resolve.DeclaredIn(sym, f.Unit)
		})
	}
	log.Debugf("unloaded %s", f.Path)
}

// invalidateLocked resets references in the other units whose name is
// declared by one of the changed units: a new declaration can hide the
// old target or make it ambiguous.
func (c *Codebase) invalidateLocked(changed ...*FileInfo) {
	names := make(map[string]bool)
	own := make(map[*ast.CompilationUnit]bool)
	for _, f := range changed {
		own[f.Unit] = true
		for n := range declaredNames(f.Unit) {
			names[n] = true
		}
	}
	if len(names) == 0 {
		return
	}
	for _, other := range c.files {
		if own[other.Unit] {
			continue
		}
		resolve.Invalidate(other.Unit, func(sym ast.Symbol) bool {
			return names[sym.SymbolName()]
		})
	}
}

// declaredNames lists the namespace, type and member names cu declares.
func declaredNames(cu *ast.CompilationUnit) map[string]bool {
	names := make(map[string]bool)
	ast.Walk(cu, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.NamespaceDecl:
			for _, ns := range x.Namespaces {
				names[ns.Name()] = true
			}
		case *ast.TypeDecl:
			names[x.Name] = true
			for _, m := range x.Members.Items() {
				switch d := m.(type) {
				case *ast.Field:
					for _, v := range d.Vars.Items() {
						names[v.Name] = true
					}
				case ast.Symbol:
					names[d.SymbolName()] = true
				}
			}
		case ast.Stmt, ast.Expr:
			return false
		}
		return true
	})
	return names
}

// resolveLocked binds the pending names of every unit in path order so
// that the outcome does not depend on map iteration.
func (c *Codebase) resolveLocked() {
	r := resolve.New(resolve.WithRegistry(c.registry))
	for _, path := range c.pathsLocked() {
		st := r.ResolveUnit(c.files[path].Unit)
		log.Debugf("%s: %s", path, st)
	}
}

func (c *Codebase) pathsLocked() []string {
	paths := make([]string, 0, len(c.files))
	for p := range c.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns the loaded paths in sorted order.
func (c *Codebase) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pathsLocked()
}

// Diagnostics returns the parse and resolve diagnostics of path.
func (c *Codebase) Diagnostics(path string) []ast.Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.files[path]
	if f == nil {
		return nil
	}
	return ast.Diagnostics(f.Unit)
}

// FindType returns the type declarations registered under a dotted name.
func (c *Codebase) FindType(fullName string) []*ast.TypeDecl {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ns, name := c.registry.Global(), fullName
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		ns, name = c.registry.Lookup(fullName[:i]), fullName[i+1:]
	}
	if ns == nil {
		return nil
	}
	var out []*ast.TypeDecl
	for _, sym := range ns.Lookup(name) {
		if td, ok := sym.(*ast.TypeDecl); ok {
			out = append(out, td)
		}
	}
	return out
}
