package sorting

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Operation is the commit strategy for sorted files.
type Operation string

const (
	OpMove     Operation = "move"
	OpCopy     Operation = "copy"
	OpSimulate Operation = "simulate"
)

// ParseOperation converts a CLI/config value to an Operation.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(strings.ToLower(s)) {
	case OpMove:
		return OpMove, true
	case OpCopy:
		return OpCopy, true
	case OpSimulate, "print", "dry-run":
		return OpSimulate, true
	default:
		return "", false
	}
}

// FileOps commits resolved files into the destination tree. Destination
// directories are created lazily and remembered, so repeated placements
// into the same directory hit the cache instead of the filesystem.
type FileOps struct {
	targetRoot string
	op         Operation

	mu          sync.Mutex
	createdDirs map[string]struct{}

	log zerolog.Logger
}

// NewFileOps creates a mover rooted at targetRoot.
func NewFileOps(targetRoot string, op Operation, log zerolog.Logger) *FileOps {
	return &FileOps{
		targetRoot:  targetRoot,
		op:          op,
		createdDirs: make(map[string]struct{}),
		log:         log.With().Str("component", "fileops").Logger(),
	}
}

// Operation returns the configured commit strategy.
func (f *FileOps) Operation() Operation {
	return f.op
}

// TargetPath resolves a relative destination path against the target root.
func (f *FileOps) TargetPath(rel string) string {
	return filepath.Join(f.targetRoot, filepath.FromSlash(rel))
}

// Commit places src at the relative destination path rel using the
// configured operation. In simulate mode nothing touches the filesystem;
// the placement is only logged and the directory recorded.
func (f *FileOps) Commit(ctx context.Context, src, rel string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dst := f.TargetPath(rel)
	if err := f.ensureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	switch f.op {
	case OpSimulate:
		f.log.Info().Str("src", src).Str("dst", dst).Msg("simulate")
		return nil
	case OpCopy:
		return f.copyFile(src, dst)
	default:
		return f.moveFile(src, dst)
	}
}

func (f *FileOps) ensureDir(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.createdDirs[dir]; ok {
		return nil
	}
	if f.op != OpSimulate {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create destination directory %s: %w", dir, err)
		}
	}
	f.createdDirs[dir] = struct{}{}
	return nil
}

// moveFile renames src into place, falling back to copy+delete for
// cross-device moves.
func (f *FileOps) moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := f.copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("moved %s but failed to remove source: %w", src, err)
	}
	return nil
}

func (f *FileOps) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", src, err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dst, err)
	}

	// preserve timestamps so later comparisons keep working
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		f.log.Warn().Err(err).Str("dst", dst).Msg("failed to preserve timestamps")
	}
	return nil
}

// Dirs returns the destination directories touched so far, sorted. In
// simulate mode this is the set of directories that would be created.
func (f *FileOps) Dirs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	dirs := make([]string, 0, len(f.createdDirs))
	for d := range f.createdDirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
