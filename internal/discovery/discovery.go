// Package discovery runs scanners over a home directory and collects what
// they find.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/id"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/provider"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

// DefaultMaxFileSize is the largest file read when Scanner.MaxFileSize is 0.
const DefaultMaxFileSize = 1 << 20

// DefaultParallelism bounds concurrent file reads when Scanner.Parallelism is 0.
const DefaultParallelism = 8

// Source supplies credentials that are not stored in files, such as the
// system keychain.
type Source interface {
	Name() string
	AppName() string
	Discover(ctx context.Context) ([]credential.Credential, error)
}

// Scanner drives a set of registered scanners over one home directory.
type Scanner struct {
	Registry *scanner.Registry
	// Home defaults to the current user's home directory.
	Home        string
	MaxFileSize int64
	Parallelism int
	// Names restricts the run to these scanners. Empty means all.
	Names []string
	Skip  []string
	// Sources are consulted after files.
	Sources []Source
	// Models enriches discovered models. Nil disables enrichment.
	Models provider.ModelRegistry
}

// SourceError records a file or source that exists but could not be read.
type SourceError struct {
	Scanner string `json:"scanner"`
	Path    string `json:"path,omitempty"`
	Err     error  `json:"-"`
}

func (e SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Scanner, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Scanner, e.Path, e.Err)
}

func (e SourceError) Unwrap() error { return e.Err }

// Result is the outcome of one Run.
type Result struct {
	Home      string                   `json:"home"`
	StartedAt time.Time                `json:"started_at"`
	Duration  time.Duration            `json:"duration"`
	Scanners  []string                 `json:"scanners"`
	Files     int                      `json:"files"`
	Configs   []scanner.ConfigInstance `json:"configs"`
	Keys      []credential.Credential  `json:"keys"`
	Errors    []SourceError            `json:"errors,omitempty"`
}

// Instances merges the provider instances of every config, first source
// wins. The returned instances are copies.
func (r *Result) Instances() []*provider.Instance {
	var all []*provider.Instance
	for _, c := range r.Configs {
		all = append(all, c.Providers...)
	}
	return provider.Merge(all...)
}

type job struct {
	sc   scanner.Scanner
	path string
}

type fileResult struct {
	read bool
	res  scanner.Result
	err  error
}

// Run scans every candidate file and source. Unreadable files are recorded
// in Result.Errors. Cancelling ctx stops scheduling and returns ctx.Err().
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Registry == nil {
		return nil, errors.New("discovery: no scanner registry")
	}
	home := s.Home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determining home directory: %w", err)
		}
		home = h
	}
	scanners, err := s.Registry.Select(s.Names, s.Skip)
	if err != nil {
		return nil, err
	}

	result := &Result{Home: home, StartedAt: time.Now().UTC()}
	for _, sc := range scanners {
		result.Scanners = append(result.Scanners, sc.Name())
	}

	jobs := plan(scanners, home)
	outs := make([]fileResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outs[i] = s.scanFile(j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asm := &provider.Assembler{Models: s.Models}
	for i, out := range outs {
		j := jobs[i]
		if out.err != nil {
			log.Warn("reading config file", "scanner", j.sc.Name(), "path", j.path, "error", out.err)
			result.Errors = append(result.Errors, SourceError{Scanner: j.sc.Name(), Path: j.path, Err: out.err})
			continue
		}
		if !out.read {
			continue
		}
		result.Files++
		for _, err := range out.res.Errors {
			result.Errors = append(result.Errors, SourceError{Scanner: j.sc.Name(), Path: j.path, Err: err})
		}
		for _, ci := range out.res.Instances {
			asm.Enrich(ci.Providers)
			result.Configs = append(result.Configs, ci)
		}
		result.Keys = append(result.Keys, out.res.Keys...)
	}

	for _, src := range s.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.runSource(ctx, src, asm, result)
	}

	result.Duration = time.Since(result.StartedAt)
	log.Debug("discovery finished",
		"home", home,
		"scanners", len(scanners),
		"files", result.Files,
		"keys", len(result.Keys),
		"errors", len(result.Errors),
		"duration", result.Duration)
	return result, nil
}

func (s *Scanner) runSource(ctx context.Context, src Source, asm *provider.Assembler, result *Result) {
	creds, err := src.Discover(ctx)
	if err != nil {
		log.Warn("reading credential source", "source", src.Name(), "error", err)
		result.Errors = append(result.Errors, SourceError{Scanner: src.Name(), Err: err})
		return
	}
	keys := credential.Deduplicate(creds)
	if len(keys) == 0 {
		return
	}
	result.Keys = append(result.Keys, keys...)
	result.Configs = append(result.Configs, scanner.ConfigInstance{
		ID:           id.Stable("cfg", src.Name()),
		AppName:      src.AppName(),
		DiscoveredAt: time.Now().UTC(),
		Providers:    asm.Assemble(src.Name(), keys),
	})
}

func (s *Scanner) parallelism() int {
	if s.Parallelism > 0 {
		return s.Parallelism
	}
	return DefaultParallelism
}

func (s *Scanner) maxFileSize() int64 {
	if s.MaxFileSize > 0 {
		return s.MaxFileSize
	}
	return DefaultMaxFileSize
}

// scanFile stats, reads and parses one file. Missing files, directories and
// oversized files are skipped without error.
func (s *Scanner) scanFile(j job) fileResult {
	info, err := os.Stat(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileResult{}
		}
		return fileResult{err: err}
	}
	if info.IsDir() {
		return fileResult{}
	}
	if info.Size() > s.maxFileSize() {
		log.Debug("skipping large file", "path", j.path, "size", info.Size(), "limit", s.maxFileSize())
		return fileResult{}
	}
	content, err := os.ReadFile(j.path)
	if err != nil {
		return fileResult{err: err}
	}
	return fileResult{read: true, res: j.sc.ParseConfig(j.path, content)}
}

// plan expands each scanner's paths and orders jobs by scanner name, then
// path. A path listed twice by one scanner is scanned once.
func plan(scanners []scanner.Scanner, home string) []job {
	var jobs []job
	for _, sc := range scanners {
		seen := make(map[string]bool)
		for _, p := range sc.ScanPaths(home) {
			for _, path := range expand(p) {
				if seen[path] {
					continue
				}
				seen[path] = true
				jobs = append(jobs, job{sc: sc, path: path})
			}
		}
	}
	sort.SliceStable(jobs, func(a, b int) bool {
		if jobs[a].sc.Name() != jobs[b].sc.Name() {
			return jobs[a].sc.Name() < jobs[b].sc.Name()
		}
		return jobs[a].path < jobs[b].path
	})
	return jobs
}

func expand(pattern string) []string {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		log.Debug("bad scan pattern", "pattern", pattern, "error", err)
		return nil
	}
	return matches
}
