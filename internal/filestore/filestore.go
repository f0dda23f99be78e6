// Package filestore stores uploaded resumes by key.
package filestore

//go:generate mockgen -source=filestore.go -destination=../mocks/filestore_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("filestore: invalid key")

// Store is an identity-addressed blob store. Put overwrites an existing key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FS implements Store on an afero filesystem under a root directory.
type FS struct {
	fs   afero.Fs
	root string
}

// NewFS creates a store rooted at root on fs, creating the directory if needed.
func NewFS(fs afero.Fs, root string) (*FS, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", root, err)
	}
	return &FS{fs: fs, root: root}, nil
}

// NewDisk creates a store on the operating system filesystem.
func NewDisk(root string) (*FS, error) {
	return NewFS(afero.NewOsFs(), root)
}

var _ Store = (*FS)(nil)

func (s *FS) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return path.Join(s.root, key), nil
}

// Put writes r under key through a temporary file so readers never see a partial resume.
func (s *FS) Put(ctx context.Context, key string, r io.Reader) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, s.root, "."+key+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := s.fs.Rename(tmpName, p); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FS) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is stored.
func (s *FS) Exists(ctx context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, p)
}
