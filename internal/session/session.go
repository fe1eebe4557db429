// Package session is the editor session: it owns the image, the caption
// layers, the viewport, the interaction machine and the inline editor, and
// routes host events through them. All methods run on the host's event
// goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"memecap/internal/caption"
	"memecap/internal/editor"
	"memecap/internal/export"
	"memecap/internal/imageio"
	"memecap/internal/interact"
	"memecap/internal/render"
	"memecap/internal/view"
)

var ErrNoImage = errors.New("no image loaded")

// Status lines shown to the user.
const (
	StatusReady        = "Open an image to start."
	StatusNoFile       = "No file selected."
	StatusLoading      = "Loading image..."
	StatusLoaded       = "Image loaded. Click on the canvas to add/edit text. Drag to move."
	StatusInvalid      = "Please select a valid image file (JPG, PNG, GIF)."
	StatusDecodeFailed = "Could not load this image. Please try a different file."
	StatusReadFailed   = "Error reading file. Please try again."
	StatusNoImage      = "Upload an image before downloading."
	StatusExported     = "Meme downloaded!"
	StatusCopied       = "Meme copied to clipboard!"
	StatusExportFailed = "Could not generate download. Try again."
)

type Options struct {
	MaxCanvas   int
	Interaction interact.Config
	Style       caption.StyleConfig
	MinZoom     float64
	MaxZoom     float64
	Fonts       *render.FontBank
	Logger      *slog.Logger
}

type Session struct {
	logger   *slog.Logger
	renderer *render.Renderer
	loader   *imageio.Loader

	store   *caption.Store
	view    *view.Viewport
	machine *interact.Machine
	field   *editor.Field

	image     *image.RGBA
	imageName string
	canvas    *render.Canvas
	style     caption.StyleConfig
	stage     r2.Box

	applied uint64
	rev     uint64
	status  string
	cursor  interact.Cursor
	dirty   bool
}

func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	v := view.NewViewport()
	if opts.MinZoom > 0 {
		v.MinZoom = opts.MinZoom
	}
	if opts.MaxZoom >= v.MinZoom {
		v.MaxZoom = opts.MaxZoom
	}
	style := opts.Style
	if style.BaseFontSize == 0 {
		style = caption.DefaultStyle()
	}
	store := caption.NewStore(r2.Vec{})
	return &Session{
		logger:   logger,
		renderer: render.NewRenderer(opts.Fonts),
		loader:   imageio.NewLoader(opts.MaxCanvas, logger),
		store:    store,
		view:     v,
		machine:  interact.New(store, v, opts.Interaction),
		style:    style.Normalized(),
		status:   StatusReady,
		dirty:    true,
	}
}

func (s *Session) Status() string            { return s.status }
func (s *Session) SetStatus(msg string)      { s.status = msg }
func (s *Session) Cursor() interact.Cursor   { return s.cursor }
func (s *Session) State() interact.State     { return s.machine.State() }
func (s *Session) HasImage() bool            { return s.image != nil }
func (s *Session) ImageName() string         { return s.imageName }
func (s *Session) Fonts() *render.FontBank   { return s.renderer.Fonts }
func (s *Session) Style() caption.StyleConfig { return s.style }

// Layers is a snapshot in creation order.
func (s *Session) Layers() []*caption.Layer { return s.store.Layers() }

func (s *Session) Selected() *caption.Layer { return s.store.Selected() }

// Viewport returns a copy of the current viewport.
func (s *Session) Viewport() view.Viewport { return *s.view }

// CanvasSize is the logical resolution, zero without an image.
func (s *Session) CanvasSize() r2.Vec { return s.store.Canvas() }

// FontPx is the caption size for the current canvas and style.
func (s *Session) FontPx() int { return s.style.FontPx(s.store.Canvas().X) }

// SetStage sets the screen rectangle the canvas is fitted into.
func (s *Session) SetStage(stage r2.Box) {
	if stage != s.stage {
		s.stage = stage
		s.dirty = true
	}
}

func (s *Session) Stage() r2.Box { return s.stage }

// Mapper is rebuilt from current state on every call.
func (s *Session) Mapper() view.Mapper {
	canvas := s.store.Canvas()
	return view.Mapper{
		Display: view.FitDisplay(s.stage, canvas),
		Canvas:  canvas,
		View:    *s.view,
	}
}

func (s *Session) frame() interact.Frame {
	return interact.Frame{
		Mapper:   s.Mapper(),
		Measurer: s.renderer,
		Style:    s.style,
		HasImage: s.image != nil,
	}
}

// LoadImage starts an asynchronous load. The result is applied by Poll or
// Await, and only if no later load was started in the meantime.
func (s *Session) LoadImage(ctx context.Context, src imageio.Source) *imageio.Pending {
	s.status = StatusLoading
	return s.loader.Load(ctx, src)
}

// LoadFile reads path and starts loading it.
func (s *Session) LoadFile(ctx context.Context, path string) (*imageio.Pending, error) {
	if path == "" {
		s.status = StatusNoFile
		return nil, fmt.Errorf("%w: empty path", imageio.ErrInvalidInput)
	}
	src, err := imageio.ReadFile(path)
	if err != nil {
		s.logger.WarnContext(ctx, "read image failed", "path", path, "err", err)
		s.status = StatusReadFailed
		return nil, err
	}
	return s.LoadImage(ctx, src), nil
}

// Poll applies any finished load without blocking and reports whether the
// session changed.
func (s *Session) Poll() bool {
	changed := false
	for {
		select {
		case p := <-s.loader.Completed():
			if s.accept(p) {
				changed = true
			}
		default:
			return changed
		}
	}
}

// Await blocks until p finishes and applies it if it is still the newest
// request. The returned error is the load error, or ctx's.
func (s *Session) Await(ctx context.Context, p *imageio.Pending) error {
	if p == nil {
		return nil
	}
	if _, err := p.Wait(ctx); err != nil && ctx.Err() != nil {
		return err
	}
	s.accept(p)
	_, err := p.Result()
	return err
}

func (s *Session) accept(p *imageio.Pending) bool {
	if !s.loader.IsLatest(p) {
		s.logger.Debug("discarding stale image load", "seq", p.Seq, "latest", s.loader.Latest())
		return false
	}
	if p.Seq <= s.applied {
		return false
	}
	s.applied = p.Seq
	res, err := p.Result()
	if err != nil {
		s.clearImage()
		if errors.Is(err, imageio.ErrInvalidInput) {
			s.status = StatusInvalid
		} else {
			s.status = StatusDecodeFailed
		}
		return true
	}
	s.setImage(res.Name, res.Image)
	s.status = StatusLoaded
	return true
}

// SetImage replaces the base image synchronously. img must already be at
// canvas resolution.
func (s *Session) SetImage(name string, img *image.RGBA) {
	s.setImage(name, img)
	s.status = StatusLoaded
}

func (s *Session) setImage(name string, img *image.RGBA) {
	size := img.Bounds().Size()
	canvas := r2.Vec{X: float64(size.X), Y: float64(size.Y)}
	s.machine.Reset()
	s.field = nil
	s.store.Reset(canvas)
	s.view.Reset(canvas)
	s.image, s.imageName = img, name
	s.canvas = render.NewCanvas(size.X, size.Y)
	s.cursor = interact.CursorDefault
	s.dirty = true
	s.logger.Info("canvas ready", "name", name, "width", size.X, "height", size.Y)
}

// clearImage leaves an empty stage behind a failed load.
func (s *Session) clearImage() {
	s.machine.Reset()
	s.field = nil
	s.store.Reset(r2.Vec{})
	s.view.Reset(r2.Vec{})
	s.image, s.imageName, s.canvas = nil, "", nil
	s.cursor = interact.CursorDefault
	s.dirty = true
}

// AddCaption places a caption directly, as a completed click-and-type would.
func (s *Session) AddCaption(pos r2.Vec, text string) (*caption.Layer, error) {
	if s.image == nil {
		return nil, ErrNoImage
	}
	s.commitEdit()
	l := s.store.Create(pos, text)
	s.dirty = true
	return l, nil
}

// SetStyle applies new caption settings live to every layer.
func (s *Session) SetStyle(style caption.StyleConfig) {
	style = style.Normalized()
	if style != s.style {
		s.style = style
		s.dirty = true
	}
}

func (s *Session) SetBaseFontSize(v int) {
	st := s.style
	st.BaseFontSize = v
	s.SetStyle(st)
}

// ResetView recenters the canvas at 100%.
func (s *Session) ResetView() {
	s.view.Reset(s.store.Canvas())
	s.dirty = true
}

func (s *Session) ZoomBy(notches float64) {
	s.apply(s.machine.Wheel(s.frame(), notches, s.Mapper().Display.Center()))
}

// Render brings the logical canvas up to date and returns it, or nil when
// no image is loaded. The viewport does not influence the pixels.
func (s *Session) Render() *image.RGBA {
	if s.canvas == nil {
		s.dirty = false
		return nil
	}
	if s.dirty {
		s.renderer.Render(s.canvas, s.image, s.store.Layers(), s.style)
		s.dirty = false
		s.rev++
	}
	return s.canvas.Image()
}

func (s *Session) Dirty() bool { return s.dirty }

// Revision counts the renders Render has actually performed. Hosts that
// mirror the canvas into a texture compare it to skip uploads.
func (s *Session) Revision() uint64 { return s.rev }

// Digest identifies the current render.
func (s *Session) Digest() string {
	img := s.Render()
	if img == nil {
		return ""
	}
	return render.Digest(img)
}

// Export sends the logical render to sink. An open edit is committed first
// so the export shows what the user typed.
func (s *Session) Export(ctx context.Context, sink export.Sink) error {
	if s.image == nil {
		s.status = StatusNoImage
		return ErrNoImage
	}
	s.commitEdit()
	s.dirty = true
	img := s.Render()
	where, err := sink.Export(ctx, img)
	if err != nil {
		s.logger.ErrorContext(ctx, "export failed", "err", err)
		s.status = StatusExportFailed
		return err
	}
	if where == "clipboard" {
		s.status = StatusCopied
	} else {
		s.status = StatusExported
	}
	return nil
}

func (s *Session) apply(eff interact.Effect) bool {
	if eff.CloseEditor {
		s.field = nil
	}
	if eff.OpenEditor != "" {
		if l := s.store.Get(eff.OpenEditor); l != nil {
			s.field = editor.NewField(l.Text)
		}
	}
	s.cursor = eff.Cursor
	if eff.Redraw || eff.CloseEditor || eff.OpenEditor != "" {
		s.dirty = true
		return true
	}
	return false
}

func (s *Session) commitEdit() {
	if s.field == nil {
		return
	}
	s.apply(s.machine.Confirm(s.field.Text()))
}
