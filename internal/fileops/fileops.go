// Package fileops creates location folders and copies images into them.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Reason classifies why a file operation failed.
type Reason string

// failure reasons.
const (
	ReasonPermission Reason = "permission"
	ReasonNoSpace    Reason = "no-space"
	ReasonNotFound   Reason = "not-found"
	ReasonExists     Reason = "exists"
	ReasonIO         Reason = "io"
)

// Error is a failed file operation.
type Error struct {
	Op     string
	Path   string
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s (%v)", e.Op, e.Path, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermission
	case errors.Is(err, syscall.ENOSPC):
		return ReasonNoSpace
	case errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	case errors.Is(err, fs.ErrExist):
		return ReasonExists
	}
	return ReasonIO
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Reason: classify(err), Err: err}
}

// FS performs the file system side effects of a sorting run.
type FS struct{}

// New allocates a FS.
func New() *FS {
	return &FS{}
}

// EnsureDir creates path and its parents. An existing directory is not an
// error.
func (FS) EnsureDir(path string) error {
	return wrap("mkdir", path, os.MkdirAll(path, 0o755))
}

// Stat returns the size of the file at path.
func (FS) Stat(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Copy copies src to dst, keeping the source mode and modification time.
// The content is written to a temporary file in the destination folder and
// renamed into place, so dst is either complete or absent.
func (FS) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return wrap("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return wrap("stat", src, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return wrap("create", dst, err)
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, in)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return wrap("write", dst, err)
	}

	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		os.Remove(tmpName)
		return wrap("chmod", dst, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return wrap("rename", dst, err)
	}

	// the copy is complete even when timestamps cannot be kept
	os.Chtimes(dst, info.ModTime(), info.ModTime())

	return nil
}

// Candidate returns the n-th destination name for dst: dst itself for 0,
// dst with the suffix _n before the extension otherwise.
func Candidate(dst string, n int) string {
	if n == 0 {
		return dst
	}
	ext := filepath.Ext(dst)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(dst, ext), n, ext)
}
