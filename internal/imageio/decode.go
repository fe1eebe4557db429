// Package imageio turns user-supplied bytes into the base image of a caption
// canvas: content sniffing, decoding, longest-side fit and asynchronous
// loading where only the newest request may land.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidInput = errors.New("not an image")
	ErrDecode       = errors.New("image decode failed")
)

// DefaultMaxCanvas bounds both canvas dimensions.
const DefaultMaxCanvas = 800

// Source is an image as picked by the user: its name and raw bytes.
type Source struct {
	Name string
	Data []byte
}

func ReadFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Source{Name: filepath.Base(path), Data: data}, nil
}

// Sniff reports the MIME type of data and whether it is an image type this
// package can decode.
func Sniff(data []byte) (string, bool) {
	if isTIFF(data) {
		return "image/tiff", true
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/bmp", "image/webp":
		return mime, true
	}
	return mime, false
}

func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

// Decode checks the content type before decoding. A non-image is
// ErrInvalidInput; an image that fails to decode is ErrDecode.
func Decode(src Source) (image.Image, string, error) {
	if len(src.Data) == 0 {
		return nil, "", fmt.Errorf("%w: %s is empty", ErrInvalidInput, src.Name)
	}
	mime, ok := Sniff(src.Data)
	if !ok {
		return nil, mime, fmt.Errorf("%w: %s is %s", ErrInvalidInput, src.Name, mime)
	}
	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, mime, fmt.Errorf("%w: %s: %v", ErrDecode, src.Name, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, mime, fmt.Errorf("%w: %s has no pixels", ErrDecode, src.Name)
	}
	return img, mime, nil
}

// FitSize scales w x h down so neither side exceeds limit, never up:
// scale = min(1, limit/w, limit/h), sides rounded.
func FitSize(w, h, limit int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if limit <= 0 {
		limit = DefaultMaxCanvas
	}
	scale := math.Min(1, math.Min(float64(limit)/float64(w), float64(limit)/float64(h)))
	fw := int(math.Round(float64(w) * scale))
	fh := int(math.Round(float64(h) * scale))
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}

// Fit returns img resampled to its fitted canvas size. An image already
// within bounds is copied unscaled.
func Fit(img image.Image, limit int) *image.RGBA {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), limit)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
