package codebase

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/dhamidi/codedom/csharp/ast"
)

// FileReport holds the findings for one file.
type FileReport struct {
	Path     string
	Findings []Finding
	// Cached is set when the findings came from the disk cache.
	Cached bool
}

// Errors counts the error findings.
func (r FileReport) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == ast.SeverityError {
			n++
		}
	}
	return n
}

type CheckOptions struct {
	Cache    *DiskCache
	Progress func(path string)
}

// Check loads paths into c and reports the diagnostics of each file.
// When every file has an entry in the cache the files are not parsed.
func (c *Codebase) Check(ctx context.Context, paths []string, opts CheckOptions) ([]FileReport, error) {
	hashes := make([]Digest, len(paths))
	for i, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		hashes[i] = sha256.Sum256(content)
	}
	set := SetDigest(hashes)

	if opts.Cache != nil {
		if reports, ok := cached(opts.Cache, paths, hashes, set); ok {
			log.Infof("%d files unchanged, using cached diagnostics", len(paths))
			return reports, nil
		}
	}

	if err := c.LoadWithProgress(ctx, paths, opts.Progress); err != nil {
		return nil, err
	}
	reports := make([]FileReport, len(paths))
	for i, p := range paths {
		reports[i] = FileReport{Path: p, Findings: Findings(c.Diagnostics(p))}
		if err := opts.Cache.Put(CacheKey(hashes[i], set), &CacheEntry{Path: p, Findings: reports[i].Findings}); err != nil {
			log.Warningf("caching diagnostics of %s: %s", p, err)
		}
	}
	return reports, nil
}

func cached(cache *DiskCache, paths []string, hashes []Digest, set Digest) ([]FileReport, bool) {
	reports := make([]FileReport, len(paths))
	for i, p := range paths {
		entry, ok, err := cache.Get(CacheKey(hashes[i], set))
		if err != nil {
			log.Warningf("reading cached diagnostics of %s: %s", p, err)
		}
		if !ok || entry.Path != p {
			return nil, false
		}
		reports[i] = FileReport{Path: p, Findings: entry.Findings, Cached: true}
	}
	return reports, true
}
