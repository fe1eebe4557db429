package render

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// memeFaces is the caption face preference order. Names are matched
// case-insensitively against font file names found in the search dirs.
var memeFaces = []struct {
	name  string
	files []string
}{
	{"Impact", []string{"impact.ttf"}},
	{"Anton", []string{"anton-regular.ttf", "anton.ttf"}},
	{"Oswald Bold", []string{"oswald-bold.ttf"}},
	{"DejaVu Sans Bold", []string{"dejavusans-bold.ttf"}},
	{"Liberation Sans Bold", []string{"liberationsans-bold.ttf"}},
}

const embeddedFaceName = "Go Bold"

type faceKey struct {
	px int
}

// FontBank resolves the caption face once and serves measurements and
// rasterizer faces from it. Rendering and hit testing share one bank so
// box widths match painted glyphs exactly.
type FontBank struct {
	name string
	font *sfnt.Font

	mu    sync.Mutex
	cache map[faceKey]font.Face
}

// DefaultFontDirs lists the platform font directories searched for the
// preferred faces.
func DefaultFontDirs() []string {
	var dirs []string
	switch runtime.GOOS {
	case "windows":
		if root := os.Getenv("WINDIR"); root != "" {
			dirs = append(dirs, filepath.Join(root, "Fonts"))
		}
	case "darwin":
		dirs = append(dirs, "/Library/Fonts", "/System/Library/Fonts")
	default:
		dirs = append(dirs, "/usr/share/fonts", "/usr/local/share/fonts")
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts"))
		if runtime.GOOS == "darwin" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	}
	return dirs
}

// NewFontBank picks the first preferred face present under dirs and falls
// back to the embedded Go Bold. With no dirs the result is the same on every
// machine, which is what tests want.
func NewFontBank(dirs ...string) *FontBank {
	bank := &FontBank{cache: map[faceKey]font.Face{}}
	found := scanFontFiles(dirs)
	for _, cand := range memeFaces {
		for _, file := range cand.files {
			path, ok := found[file]
			if !ok {
				continue
			}
			f, err := loadFont(path)
			if err != nil {
				slog.Warn("font unusable", "face", cand.name, "path", path, "err", err)
				continue
			}
			bank.name, bank.font = cand.name, f
			return bank
		}
	}
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		// gobold is compiled in; a parse failure means a broken build.
		panic(fmt.Sprintf("render: embedded font: %v", err))
	}
	bank.name, bank.font = embeddedFaceName, f
	return bank
}

func scanFontFiles(dirs []string) map[string]string {
	found := map[string]string{}
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			base := strings.ToLower(d.Name())
			if _, dup := found[base]; !dup {
				found[base] = path
			}
			return nil
		})
	}
	return found
}

func loadFont(path string) (*sfnt.Font, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(raw)
}

// Name reports which face of the fallback chain is in use.
func (b *FontBank) Name() string { return b.name }

// Face returns a cached rasterizer face at px pixels, for hosts that draw
// text with font.Drawer based APIs.
func (b *FontBank) Face(px int) font.Face {
	if px < 1 {
		px = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := faceKey{px: px}
	if f, ok := b.cache[key]; ok {
		return f
	}
	face, err := opentype.NewFace(b.font, &opentype.FaceOptions{Size: float64(px), DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil
	}
	b.cache[key] = face
	return face
}

// MeasureText returns the advance width of s at px pixels, kerning included.
func (b *FontBank) MeasureText(s string, px int) float64 {
	return b.layout(s, px, nil)
}

// Metrics returns ascent and descent in pixels, both positive.
func (b *FontBank) Metrics(px int) (ascent, descent float64) {
	var buf sfnt.Buffer
	m, err := b.font.Metrics(&buf, fixed.I(px), font.HintingNone)
	if err != nil {
		return float64(px) * 0.8, float64(px) * 0.2
	}
	return fix26(m.Ascent), fix26(m.Descent)
}

// layout walks the glyphs of s from x=0 and returns the total advance. When
// visit is set it receives each glyph outline and its pen x.
func (b *FontBank) layout(s string, px int, visit func(segs sfnt.Segments, penX float64)) float64 {
	if s == "" || px <= 0 {
		return 0
	}
	var buf sfnt.Buffer
	ppem := fixed.I(px)
	pen := 0.0
	var prev sfnt.GlyphIndex
	for i, r := range s {
		idx, err := b.font.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		if i > 0 {
			if k, err := b.font.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				pen += fix26(k)
			}
		}
		if visit != nil {
			if segs, err := b.font.LoadGlyph(&buf, idx, ppem, nil); err == nil {
				visit(segs, pen)
			}
		}
		if adv, err := b.font.GlyphAdvance(&buf, idx, ppem, font.HintingNone); err == nil {
			pen += fix26(adv)
		}
		prev = idx
	}
	return pen
}

func fix26(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
