package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const fileScheme = "file://"

// FileSystem is the filesystem provider the brew log uses to manage photos.
// Paths may be plain paths or file:// URIs.
type FileSystem interface {
	Exists(ctx context.Context, path string) (bool, error)
	// Copy fails if the source does not exist.
	Copy(ctx context.Context, from, to string) error
	Delete(ctx context.Context, path string) error
	MakeDir(ctx context.Context, path string, recursive bool) error
	// DocumentsDir is the well-known writable root for durable app files.
	DocumentsDir() string
}

// LocalPath strips a file:// scheme, leaving other strings untouched.
func LocalPath(uri string) string {
	return strings.TrimPrefix(uri, fileScheme)
}

// OSFileSystem implements FileSystem on the host filesystem.
type OSFileSystem struct {
	documents string
}

var _ FileSystem = (*OSFileSystem)(nil)

// NewOSFileSystem roots durable documents at documentsDir, creating it if needed.
func NewOSFileSystem(documentsDir string) (*OSFileSystem, error) {
	abs, err := filepath.Abs(LocalPath(documentsDir))
	if err != nil {
		return nil, fmt.Errorf("resolve documents dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return &OSFileSystem{documents: abs}, nil
}

func (f *OSFileSystem) DocumentsDir() string {
	return f.documents
}

func (f *OSFileSystem) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(LocalPath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

func (f *OSFileSystem) Copy(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(LocalPath(from))
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dstPath := LocalPath(to)
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return fmt.Errorf("copy %s to %s: %w", from, to, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

func (f *OSFileSystem) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(LocalPath(path)); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (f *OSFileSystem) MakeDir(ctx context.Context, path string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := LocalPath(path)
	if recursive {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("mkdir -p %s: %w", path, err)
		}
		return nil
	}
	if err := os.Mkdir(p, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}
