package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"brewlog/internal/files"

	"github.com/google/uuid"
)

// PickResult is what an image picker returns. Cancelled is a normal outcome,
// not an error.
type PickResult struct {
	Cancelled bool
	URI       string
}

// Picker lets the user choose a photo.
type Picker interface {
	PickImage(ctx context.Context) (PickResult, error)
}

// StaticPicker "picks" a fixed URI. An empty URI behaves like a cancelled
// picker. The server uses it for uploaded files and the CLI for path arguments.
type StaticPicker struct {
	URI string
}

func (p StaticPicker) PickImage(ctx context.Context) (PickResult, error) {
	if err := ctx.Err(); err != nil {
		return PickResult{}, err
	}
	if p.URI == "" {
		return PickResult{Cancelled: true}, nil
	}
	return PickResult{URI: p.URI}, nil
}

type Format string

const (
	FormatJPEG Format = "jpeg"
)

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	default:
		return string(f)
	}
}

type Options struct {
	// Quality in 1..100
	Quality int
	Format  Format
}

// DefaultOptions recompress to JPEG at quality 80.
var DefaultOptions = Options{Quality: 80, Format: FormatJPEG}

// Normalizer recompresses an image into a fixed format and returns the URI of
// the result.
type Normalizer interface {
	Normalize(ctx context.Context, uri string, opts Options) (string, error)
}

// JPEGNormalizer decodes JPEG, PNG or GIF input and writes a JPEG into
// ScratchDir.
type JPEGNormalizer struct {
	ScratchDir string
}

var _ Normalizer = JPEGNormalizer{}

func (n JPEGNormalizer) Normalize(ctx context.Context, uri string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if opts.Format != "" && opts.Format != FormatJPEG {
		return "", fmt.Errorf("unsupported output format %q", opts.Format)
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultOptions.Quality
	}

	in, err := os.Open(files.LocalPath(uri))
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	dir := n.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	outPath := filepath.Join(dir, uuid.NewString()+"."+FormatJPEG.Extension())
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create normalized image: %w", err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: quality}); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("close normalized image: %w", err)
	}
	return outPath, nil
}

// ExtensionOf returns the lowercase extension of the last path element of
// uri, ignoring any query string or fragment, or fallback when there is none.
func ExtensionOf(uri, fallback string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		uri = uri[i+1:]
	}
	i := strings.LastIndex(uri, ".")
	if i < 0 || i == len(uri)-1 {
		return fallback
	}
	return strings.ToLower(uri[i+1:])
}
