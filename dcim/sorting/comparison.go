package sorting

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
)

// HashAlgorithm selects the digest used for deep file comparison.
type HashAlgorithm string

const (
	HashMD5    HashAlgorithm = "md5"
	HashSHA256 HashAlgorithm = "sha256"
)

// FileComparer decides whether two files hold identical content: a cheap
// size check first, then a streaming hash of both. It is used by the
// executor before committing destructive outcomes; the pattern engine and
// resolver never read file bytes themselves.
type FileComparer struct {
	ignoreZeroTarget bool
	algo             HashAlgorithm
}

// NewFileComparer creates a comparer. With ignoreZeroTarget set, an empty
// target file never counts as a match, so it gets replaced or renamed
// around instead of shadowing real content.
func NewFileComparer(ignoreZeroTarget bool, algo HashAlgorithm) *FileComparer {
	return &FileComparer{ignoreZeroTarget: ignoreZeroTarget, algo: algo}
}

// DefaultComparer returns a SHA-256 comparer.
func DefaultComparer() *FileComparer {
	return NewFileComparer(false, HashSHA256)
}

// FilesMatch reports whether src and target hold identical content.
func (c *FileComparer) FilesMatch(src, target string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("cannot stat source %s: %w", src, err)
	}
	tgtInfo, err := os.Stat(target)
	if err != nil {
		return false, fmt.Errorf("cannot stat target %s: %w", target, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return false, fmt.Errorf("source %s is not a regular file", src)
	}
	if !tgtInfo.Mode().IsRegular() {
		return false, fmt.Errorf("target %s is not a regular file", target)
	}

	if c.ignoreZeroTarget && tgtInfo.Size() == 0 {
		return false, nil
	}
	if srcInfo.Size() != tgtInfo.Size() {
		return false, nil
	}

	srcSum, err := c.digest(src)
	if err != nil {
		return false, err
	}
	tgtSum, err := c.digest(target)
	if err != nil {
		return false, err
	}
	return bytes.Equal(srcSum, tgtSum), nil
}

func (c *FileComparer) digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for hashing: %w", path, err)
	}
	defer f.Close()

	var h hash.Hash
	switch c.algo {
	case HashMD5:
		h = md5.New()
	default:
		h = sha256.New()
	}
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("error hashing %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
