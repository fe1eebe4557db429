package render

import (
	"encoding/binary"
	"encoding/hex"
	"image"
	"image/draw"

	"golang.org/x/crypto/blake2b"
)

// Digest is a BLAKE2b-256 hash over the image size and its RGBA pixels in
// row order. Two renders are identical exactly when their digests match.
func Digest(img image.Image) string {
	if img == nil {
		return ""
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	h, _ := blake2b.New256(nil)
	b := rgba.Bounds()
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:], uint32(b.Dx()))
	binary.BigEndian.PutUint32(hdr[4:], uint32(b.Dy()))
	h.Write(hdr[:])
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := rgba.PixOffset(b.Min.X, y)
		h.Write(rgba.Pix[off : off+b.Dx()*4])
	}
	return hex.EncodeToString(h.Sum(nil))
}
