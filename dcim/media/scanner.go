package media

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// ScanOptions configures a directory scan.
type ScanOptions struct {
	MaxDepth      int    // 0 = unlimited
	IncludeHidden bool   // include dotfiles and dot-directories
	WorkerCount   int    // concurrent metadata extraction workers
	IgnoreFile    string // gitignore-style exclude file name, looked up in the scan root
}

// Scanner walks a source tree and produces one Info per regular file,
// with metadata extraction fanned out over a worker pool.
type Scanner struct {
	root      string
	opts      ScanOptions
	ignored   *ignore.GitIgnore
	extractor *Extractor
	log       zerolog.Logger
}

// NewScanner creates a scanner rooted at root. The root must be an existing
// directory. If an ignore file is present in the root, its patterns exclude
// matching paths from the scan.
func NewScanner(root string, opts ScanOptions, extractor *Extractor, log zerolog.Logger) (*Scanner, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}

	s := &Scanner{
		root:      root,
		opts:      opts,
		extractor: extractor,
		log:       log.With().Str("component", "scanner").Logger(),
	}

	if opts.IgnoreFile != "" {
		ignorePath := filepath.Join(root, opts.IgnoreFile)
		if _, err := os.Stat(ignorePath); err == nil {
			ignored, err := ignore.CompileIgnoreFile(ignorePath)
			if err != nil {
				return nil, fmt.Errorf("error reading %s: %w", ignorePath, err)
			}
			s.ignored = ignored
		}
	}

	return s, nil
}

// Scan walks the tree and returns the collected file infos. Metadata
// extraction runs concurrently; the walk itself is sequential.
func (s *Scanner) Scan(ctx context.Context) ([]*Info, error) {
	type candidate struct {
		path string
		info fs.FileInfo
	}
	var candidates []candidate

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if !s.opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if s.ignored != nil && s.ignored.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.opts.MaxDepth > 0 && pathDepth(rel) >= s.opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("cannot stat file")
			return nil
		}
		candidates = append(candidates, candidate{path: path, info: fi})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", s.root, err)
	}

	p := pool.NewWithResults[*Info]().WithContext(ctx).WithMaxGoroutines(s.opts.WorkerCount)
	for _, c := range candidates {
		c := c
		p.Go(func(ctx context.Context) (*Info, error) {
			bag := NewBag(c.info.Name())
			bag.FSTimestamp = c.info.ModTime()
			s.extractor.Enrich(c.path, bag)
			return &Info{
				Identity: NewIdentity(c.path, c.info.Size(), c.info.ModTime()),
				Bag:      bag,
			}, nil
		})
	}

	infos, err := p.Wait()
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("files", len(infos)).Str("root", s.root).Msg("scan complete")
	return infos, nil
}

func pathDepth(rel string) int {
	return len(strings.Split(filepath.ToSlash(rel), "/"))
}
