package codebase

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dhamidi/codedom/csharp/ast"
)

// cacheSchema is bumped whenever CacheEntry changes shape.
const cacheSchema uint16 = 1

// DiskCache stores the diagnostics of checked files on disk. Entries are
// keyed by the file's content together with the content of every other
// file checked with it, since resolve diagnostics depend on the whole
// codebase. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type CacheEntry struct {
	Schema   uint16
	Path     string
	Findings []Finding
}

// Finding is a diagnostic detached from its tree.
type Finding struct {
	Pos      ast.Position
	End      ast.Position
	Severity ast.Severity
	Origin   ast.Origin
	Message  string
}

func (f Finding) String() string {
	return f.Pos.String() + ": " + f.Severity.String() + ": " + f.Message
}

// Findings converts diagnostics for storage or printing.
func Findings(diags []ast.Diagnostic) []Finding {
	out := make([]Finding, len(diags))
	for i, d := range diags {
		out[i] = Finding{Pos: d.Pos(), End: d.Node.Base().Span.End, Severity: d.Severity(), Origin: d.Origin(), Message: d.Message()}
	}
	return out
}

// OpenDiskCache opens the cache in dir, or in the user cache directory
// when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "codedom")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// SetDigest combines the digests of all files checked together. The
// result does not depend on the order of hashes.
func SetDigest(hashes []Digest) Digest {
	sorted := append([]Digest(nil), hashes...)
	sort.Slice(sorted, func(i, j int) bool { return string(sorted[i][:]) < string(sorted[j][:]) })
	h := sha256.New()
	for _, d := range sorted {
		h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// CacheKey is the key of one file's entry within a set of files.
func CacheKey(file, set Digest) Digest {
	return sha256.Sum256(append(file[:], set[:]...))
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "diag", hex.EncodeToString(key[:])+".mp")
}

// Put writes an entry, replacing the previous one atomically.
func (c *DiskCache) Put(key Digest, entry *CacheEntry) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	entry.Schema = cacheSchema
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads an entry. ok is false when there is none or it was written
// by an older schema.
func (c *DiskCache) Get(key Digest) (entry *CacheEntry, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	entry = &CacheEntry{}
	if err := msgpack.NewDecoder(f).Decode(entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != cacheSchema {
		return nil, false, nil
	}
	return entry, true, nil
}
