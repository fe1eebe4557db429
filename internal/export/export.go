// Package export writes the logical caption render out as PNG.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.design/x/clipboard"
)

var ErrExport = errors.New("export failed")

// DefaultFileName is the name the browser version downloads as.
const DefaultFileName = "meme.png"

// Sink receives an encoded render. Where reports the destination for status
// messages.
type Sink interface {
	Export(ctx context.Context, img image.Image) (where string, err error)
}

// PNG encodes img losslessly.
func PNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Write(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nothing to encode", ErrExport)
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("%w: encode png: %v", ErrExport, err)
	}
	return nil
}

// DefaultName picks meme.png inside dir, or meme-<digest prefix>.png when
// that file already exists.
func DefaultName(dir, digest string) string {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	tag := digest
	if len(tag) > 8 {
		tag = tag[:8]
	}
	if tag == "" {
		tag = "copy"
	}
	return filepath.Join(dir, "meme-"+tag+".png")
}

// FileSink writes to Path through a temporary file in the same directory so
// a failed export never leaves a truncated PNG behind.
type FileSink struct {
	Path string
}

func (s FileSink) Export(ctx context.Context, img image.Image) (string, error) {
	if s.Path == "" {
		return "", fmt.Errorf("%w: no destination path", ErrExport)
	}
	data, err := PNG(img)
	if err != nil {
		return "", err
	}
	if err := WriteFile(s.Path, data); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "exported", "path", s.Path, "bytes", len(data))
	return s.Path, nil
}

func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".memecap-*.png")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("%w: write %s: %v", ErrExport, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("%w: write %s: %v", ErrExport, path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	return nil
}

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// ClipboardSink puts the PNG on the system clipboard as an image.
type ClipboardSink struct{}

func (ClipboardSink) Export(ctx context.Context, img image.Image) (string, error) {
	clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
	if clipboardErr != nil {
		return "", fmt.Errorf("%w: clipboard unavailable: %v", ErrExport, clipboardErr)
	}
	data, err := PNG(img)
	if err != nil {
		return "", err
	}
	clipboard.Write(clipboard.FmtImage, data)
	slog.InfoContext(ctx, "copied render to clipboard", "bytes", len(data))
	return "clipboard", nil
}
