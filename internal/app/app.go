package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sqweek/dialog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/gonum/spatial/r2"

	"memecap/internal/caption"
	"memecap/internal/config"
	"memecap/internal/export"
	"memecap/internal/imageio"
	"memecap/internal/interact"
	"memecap/internal/platform"
	"memecap/internal/render"
	"memecap/internal/session"
	"memecap/internal/ui"
)

const (
	windowTitle  = "memecap"
	minWindowW   = 720
	minWindowH   = 520
	fontStep     = 4
	repeatDelay  = 30
	repeatPeriod = 3
)

type rect struct {
	x int
	y int
	w int
	h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && y >= r.y && x < r.x+r.w && y < r.y+r.h
}

type actionButton struct {
	id     string
	label  string
	r      rect
	active bool
}

type colorSwatch struct {
	value  color.RGBA
	stroke bool
	r      rect
}

type fontKey struct {
	size int
	bold bool
}

type fontBank struct {
	regular *opentype.Font
	bold    *opentype.Font
	cache   map[fontKey]font.Face
}

func newFontBank() fontBank {
	bank := fontBank{cache: map[fontKey]font.Face{}}
	reg, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return bank
	}
	bol, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return bank
	}
	bank.regular = reg
	bank.bold = bol
	return bank
}

// keyBinding maps a host key to the platform key name the session expects.
type keyBinding struct {
	key    ebiten.Key
	name   string
	repeat bool
}

var sessionKeys = []keyBinding{
	{ebiten.KeyEnter, platform.KeyEnter, false},
	{ebiten.KeyNumpadEnter, platform.KeyEnter, false},
	{ebiten.KeyEscape, platform.KeyEscape, false},
	{ebiten.KeyBackspace, platform.KeyBackspace, true},
	{ebiten.KeyDelete, platform.KeyDelete, true},
	{ebiten.KeyArrowLeft, platform.KeyLeft, true},
	{ebiten.KeyArrowRight, platform.KeyRight, true},
	{ebiten.KeyHome, platform.KeyHome, false},
	{ebiten.KeyEnd, platform.KeyEnd, false},
	{ebiten.KeyA, "A", false},
	{ebiten.KeyDigit0, "0", false},
}

type Options struct {
	Config     config.Config
	ConfigPath string
	Fonts      *render.FontBank
	Logger     *slog.Logger
}

type App struct {
	theme   ui.Theme
	session *session.Session
	logger  *slog.Logger

	cfg     config.Config
	cfgPath string

	ctx    context.Context
	cancel context.CancelFunc

	frameBuffer *render.FrameBuffer
	canvas      *ebiten.Image
	artwork     *ebiten.Image
	artworkRev  uint64

	fonts fontBank

	layout         ui.Layout
	topActions     []actionButton
	toolbarActions []actionButton
	colorSwatches  []colorSwatch
	palette        []color.RGBA

	templates   []string
	templateIdx int
	templateCh  <-chan []string

	title       string
	focused     bool
	inStage     bool
	pointerDown bool
	lastX       int
	lastY       int
	frameTick   uint64

	screenW int
	screenH int
}

func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config.Normalize()
	ctx, cancel := context.WithCancel(context.Background())
	sess := session.New(session.Options{
		MaxCanvas:   cfg.MaxCanvas,
		Interaction: cfg.Interaction(),
		Style:       cfg.Style(),
		MinZoom:     cfg.MinZoom,
		MaxZoom:     cfg.MaxZoom,
		Fonts:       opts.Fonts,
		Logger:      logger,
	})
	a := &App{
		theme:          ui.DefaultTheme(),
		session:        sess,
		logger:         logger,
		cfg:            cfg,
		cfgPath:        opts.ConfigPath,
		ctx:            ctx,
		cancel:         cancel,
		fonts:          newFontBank(),
		topActions:     make([]actionButton, 0, 12),
		toolbarActions: make([]actionButton, 0, 12),
		colorSwatches:  make([]colorSwatch, 0, 16),
		palette: []color.RGBA{
			{0xFF, 0xFF, 0xFF, 0xFF},
			{0x00, 0x00, 0x00, 0xFF},
			{0xF2, 0xC1, 0x1D, 0xFF},
			{0xE5, 0x39, 0x35, 0xFF},
			{0x1E, 0x88, 0xE5, 0xFF},
			{0x43, 0xA0, 0x47, 0xFF},
		},
		focused: true,
	}
	a.watchTemplates()
	return a
}

// Session exposes the editor session, mainly for loading an initial image.
func (a *App) Session() *session.Session { return a.session }

func (a *App) Run() error {
	defer a.cancel()
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("run game loop: %w", err)
	}
	return nil
}

func (a *App) watchTemplates() {
	dir := a.cfg.TemplateDir
	if dir == "" {
		return
	}
	list, err := config.Templates(dir)
	if err != nil {
		a.logger.Warn("template directory unavailable", "dir", dir, "err", err)
		return
	}
	a.templates = list
	ch, err := config.WatchTemplates(a.ctx, dir, config.DefaultDebounce)
	if err != nil {
		a.logger.Warn("template watcher not started", "dir", dir, "err", err)
		return
	}
	a.templateCh = ch
}

func (a *App) Update() error {
	a.frameTick++
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	alt := ebiten.IsKeyPressed(ebiten.KeyAlt)

	w, h := a.currentViewportSize()
	a.layout = ui.ComputeLayout(w, h, a.theme, 1)
	a.session.SetStage(a.layout.Stage())

	a.session.Poll()
	a.drainTemplates()
	a.syncTitle()

	focused := ebiten.IsFocused()
	if a.focused && !focused {
		a.session.FocusLost()
		a.releasePointer()
	}
	a.focused = focused

	if files := ebiten.DroppedFiles(); files != nil {
		a.loadDropped(files)
	}

	_, editing := a.editing()
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyO) {
		a.invokeAction("open")
		return nil
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.invokeAction("export")
		return nil
	}
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		a.invokeAction("copy")
		return nil
	}
	if ctrl && !shift && inpututil.IsKeyJustPressed(ebiten.KeyC) && editing {
		a.copySelectedText()
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyX) && editing {
		if cut, ok := a.session.CutSelection(); ok {
			if err := clipboard.WriteAll(cut); err != nil {
				a.session.SetStatus("Cut failed: " + err.Error())
			}
		}
	}
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV) && editing {
		paste, err := clipboard.ReadAll()
		if err != nil {
			a.session.SetStatus("Paste failed: " + err.Error())
		} else {
			a.session.Paste(paste)
		}
	}
	if ctrl && (inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd)) {
		a.invokeAction("zoom_in")
	}
	if ctrl && (inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract)) {
		a.invokeAction("zoom_out")
	}
	if !editing && !ctrl {
		if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
			a.invokeAction("template_prev")
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
			a.invokeAction("template_next")
		}
	}

	mods := platform.Mods(0)
	if ctrl {
		mods |= platform.ModCtrl
	}
	if shift {
		mods |= platform.ModShift
	}
	if alt {
		mods |= platform.ModAlt
	}
	for _, kb := range sessionKeys {
		if !a.keyFired(kb) {
			continue
		}
		if (kb.name == "A" || kb.name == "0") && !ctrl {
			continue
		}
		a.dispatch(platform.Event{Type: platform.EventKeyDown, Key: kb.name, Mods: mods})
	}

	if !ctrl {
		var typed strings.Builder
		for _, r := range ebiten.AppendInputChars(nil) {
			if r < 0x20 || !utf8.ValidRune(r) {
				continue
			}
			typed.WriteRune(r)
		}
		if typed.Len() > 0 {
			a.dispatch(platform.Event{Type: platform.EventTextInput, Text: typed.String()})
		}
	}

	a.updatePointer()
	a.updateCursor()
	return nil
}

func (a *App) keyFired(kb keyBinding) bool {
	if inpututil.IsKeyJustPressed(kb.key) {
		return true
	}
	if !kb.repeat {
		return false
	}
	d := inpututil.KeyPressDuration(kb.key)
	return d >= repeatDelay && (d-repeatDelay)%repeatPeriod == 0
}

func (a *App) updatePointer() {
	x, y := ebiten.CursorPosition()
	moved := x != a.lastX || y != a.lastY
	a.lastX, a.lastY = x, y
	inStage := a.layout.InStage(x, y)
	ev := platform.Event{X: float64(x), Y: float64(y), Button: 0}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		id, onAction := a.actionAt(x, y)
		switch {
		case onAction:
			a.invokeAction(id)
		case a.handleToolbarClick(x, y):
		case inStage:
			ev.Type = platform.EventPointerDown
			a.dispatch(ev)
			a.pointerDown = true
		default:
			a.session.FocusLost()
		}
	}

	if moved && (inStage || a.pointerDown) && !(a.inStage && !inStage) {
		ev.Type = platform.EventPointerMove
		a.dispatch(ev)
	}
	if a.inStage && !inStage {
		a.dispatch(platform.Event{Type: platform.EventPointerLeave})
		a.pointerDown = false
	}
	a.inStage = inStage

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && a.pointerDown {
		ev.Type = platform.EventPointerUp
		a.dispatch(ev)
		a.pointerDown = false
	}

	if _, wy := ebiten.Wheel(); wy != 0 && inStage {
		ev.Type = platform.EventWheel
		ev.DeltaY = wy
		a.dispatch(ev)
	}
}

func (a *App) releasePointer() {
	if a.pointerDown {
		a.dispatch(platform.Event{Type: platform.EventPointerLeave})
		a.pointerDown = false
	}
}

func (a *App) dispatch(ev platform.Event) bool {
	ev.Time = time.Now()
	return a.session.Dispatch(a.ctx, ev)
}

func (a *App) updateCursor() {
	shape := ebiten.CursorShapeDefault
	switch a.session.Cursor() {
	case interact.CursorGrab:
		shape = ebiten.CursorShapePointer
	case interact.CursorGrabbing:
		shape = ebiten.CursorShapeMove
	default:
		if box, ok := a.session.EditorRect(); ok && box.Contains(r2.Vec{X: float64(a.lastX), Y: float64(a.lastY)}) {
			shape = ebiten.CursorShapeText
		} else if a.inStage && a.session.HasImage() {
			shape = ebiten.CursorShapeCrosshair
		}
	}
	ebiten.SetCursorShape(shape)
}

func (a *App) editing() (*caption.Layer, bool) {
	l, _, ok := a.session.Editing()
	return l, ok
}

func (a *App) copySelectedText() bool {
	_, f, ok := a.session.Editing()
	if !ok || !f.HasSelection() {
		return false
	}
	if err := clipboard.WriteAll(f.SelectedText()); err != nil {
		a.session.SetStatus("Copy failed: " + err.Error())
		return false
	}
	return true
}

func (a *App) loadDropped(files fs.FS) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil || len(entries) == 0 {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(files, e.Name())
		if err != nil {
			a.logger.Warn("read dropped file failed", "name", e.Name(), "err", err)
			a.session.SetStatus(session.StatusReadFailed)
			return
		}
		a.session.LoadImage(a.ctx, imageio.Source{Name: e.Name(), Data: data})
		return
	}
}

func (a *App) drainTemplates() {
	if a.templateCh == nil {
		return
	}
	for {
		select {
		case list, ok := <-a.templateCh:
			if !ok {
				a.templateCh = nil
				return
			}
			a.templates = list
			if a.templateIdx >= len(list) {
				a.templateIdx = 0
			}
		default:
			return
		}
	}
}

func (a *App) syncTitle() {
	title := windowTitle
	if name := a.session.ImageName(); name != "" {
		title = filepath.Base(name) + " - " + windowTitle
	}
	if title != a.title {
		ebiten.SetWindowTitle(title)
		a.title = title
	}
}

func (a *App) handleToolbarClick(x, y int) bool {
	for _, sw := range a.colorSwatches {
		if sw.r.contains(x, y) {
			st := a.session.Style()
			if sw.stroke {
				st.Stroke = sw.value
			} else {
				st.Fill = sw.value
			}
			a.applyStyle(st)
			return true
		}
	}
	for _, btn := range a.toolbarActions {
		if btn.r.contains(x, y) {
			a.invokeAction(btn.id)
			return true
		}
	}
	return false
}

func (a *App) actionAt(x, y int) (string, bool) {
	for _, btn := range a.topActions {
		if btn.r.contains(x, y) {
			return btn.id, true
		}
	}
	return "", false
}

func (a *App) invokeAction(id string) {
	switch id {
	case "open":
		if err := a.openImageDialog(); err != nil {
			a.logger.Warn("open failed", "err", err)
		}
	case "export":
		if err := a.exportDialog(); err != nil {
			a.logger.Warn("export failed", "err", err)
		}
	case "copy":
		if err := a.session.Export(a.ctx, export.ClipboardSink{}); err != nil {
			a.logger.Warn("copy failed", "err", err)
		}
	case "font_down":
		a.bumpFont(-fontStep)
	case "font_up":
		a.bumpFont(fontStep)
	case "zoom_in":
		a.session.ZoomBy(1)
	case "zoom_out":
		a.session.ZoomBy(-1)
	case "reset_view":
		if a.session.HasImage() {
			a.session.ResetView()
		}
	case "delete":
		if _, editing := a.editing(); !editing {
			a.dispatch(platform.Event{Type: platform.EventKeyDown, Key: platform.KeyDelete})
		}
	case "template_prev":
		a.stepTemplate(-1)
	case "template_next":
		a.stepTemplate(1)
	}
}

func (a *App) openImageDialog() error {
	b := dialog.File().Title("Open image").Filter("Images", "png", "jpg", "jpeg", "gif", "bmp", "webp", "tif", "tiff")
	if a.cfg.TemplateDir != "" {
		b = b.SetStartDir(a.cfg.TemplateDir)
	}
	path, err := b.Load()
	if errors.Is(err, dialog.ErrCancelled) || (err == nil && path == "") {
		a.session.SetStatus(session.StatusNoFile)
		return nil
	}
	if err != nil {
		a.session.SetStatus(session.StatusReadFailed)
		return err
	}
	_, err = a.session.LoadFile(a.ctx, filepath.Clean(path))
	return err
}

func (a *App) exportDialog() error {
	if !a.session.HasImage() {
		a.session.SetStatus(session.StatusNoImage)
		return nil
	}
	dir := a.cfg.ExportDir
	if dir == "" {
		dir = "."
	}
	suggested := export.DefaultName(dir, a.session.Digest())
	path, err := dialog.File().Title("Download meme").Filter("PNG image", "png").
		SetStartDir(filepath.Dir(suggested)).SetStartFile(filepath.Base(suggested)).Save()
	if errors.Is(err, dialog.ErrCancelled) {
		return nil
	}
	if err != nil {
		a.session.SetStatus(session.StatusExportFailed)
		return err
	}
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	return a.session.Export(a.ctx, export.FileSink{Path: path})
}

func (a *App) bumpFont(delta int) {
	st := a.session.Style()
	st.BaseFontSize = caption.ClampBaseFontSize(st.BaseFontSize + delta)
	a.applyStyle(st)
	a.session.SetStatus(fmt.Sprintf("Font size %d", st.BaseFontSize))
}

// applyStyle updates the live style and persists it.
func (a *App) applyStyle(st caption.StyleConfig) {
	a.session.SetStyle(st)
	a.cfg.SetStyle(a.session.Style())
	if a.cfgPath == "" {
		return
	}
	if err := config.Save(a.cfgPath, a.cfg); err != nil {
		a.logger.Warn("save settings failed", "path", a.cfgPath, "err", err)
	}
}

func (a *App) stepTemplate(delta int) {
	if len(a.templates) == 0 {
		a.session.SetStatus("No templates in " + a.cfg.TemplateDir)
		return
	}
	n := len(a.templates)
	a.templateIdx = ((a.templateIdx+delta)%n + n) % n
	if _, err := a.session.LoadFile(a.ctx, a.templates[a.templateIdx]); err != nil {
		a.logger.Warn("template load failed", "path", a.templates[a.templateIdx], "err", err)
	}
}

func (a *App) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if a.frameBuffer == nil || a.frameBuffer.W != w || a.frameBuffer.H != h {
		a.frameBuffer = render.NewFrameBuffer(w, h)
		a.canvas = ebiten.NewImage(w, h)
	}

	layout := ui.DrawShell(a.frameBuffer, a.artworkBox(), a.theme, 1)
	menuFace := a.uiFace(12, true)
	toolbarFace := a.uiFace(11, false)
	statusFace := a.uiFace(11, false)

	a.layoutTopActions(menuFace, layout)
	a.layoutToolbarControls(toolbarFace, layout)

	a.canvas.WritePixels(a.frameBuffer.Pixels)
	screen.DrawImage(a.canvas, nil)

	a.drawArtwork(screen, layout)
	a.drawSelection(screen)
	a.drawEditor(screen)

	a.drawButtonLabels(screen, menuFace, a.topActions, color.RGBA{R: 0xF4, G: 0xF6, B: 0xFA, A: 0xFF})
	a.drawButtonLabels(screen, toolbarFace, a.toolbarActions, color.RGBA{R: 0xE6, G: 0xE9, B: 0xF0, A: 0xFF})

	a.drawStatus(screen, statusFace, layout)
}

// artworkBox is the on-screen rect of the artwork clipped to the stage.
func (a *App) artworkBox() r2.Box {
	canvas := a.session.CanvasSize()
	if canvas.X <= 0 || canvas.Y <= 0 {
		return r2.Box{}
	}
	scale, offset := a.session.Mapper().Affine()
	box := r2.Box{Min: offset, Max: r2.Add(offset, r2.Vec{X: canvas.X * scale.X, Y: canvas.Y * scale.Y})}
	return clipBox(box, a.layout.Stage())
}

func clipBox(b, clip r2.Box) r2.Box {
	out := r2.Box{
		Min: r2.Vec{X: math.Max(b.Min.X, clip.Min.X), Y: math.Max(b.Min.Y, clip.Min.Y)},
		Max: r2.Vec{X: math.Min(b.Max.X, clip.Max.X), Y: math.Min(b.Max.Y, clip.Max.Y)},
	}
	if out.Max.X <= out.Min.X || out.Max.Y <= out.Min.Y {
		return r2.Box{}
	}
	return out
}

func (a *App) drawArtwork(screen *ebiten.Image, layout ui.Layout) {
	img := a.session.Render()
	if img == nil {
		return
	}
	size := img.Bounds().Size()
	rev := a.session.Revision()
	if a.artwork == nil || a.artwork.Bounds().Size() != size {
		a.artwork = ebiten.NewImage(size.X, size.Y)
		a.artworkRev = 0
	}
	if rev != a.artworkRev {
		a.artwork.WritePixels(img.Pix)
		a.artworkRev = rev
	}

	stage := image.Rect(layout.StageX, layout.StageY, layout.StageX+layout.StageW, layout.StageY+layout.StageH)
	dst, ok := screen.SubImage(stage).(*ebiten.Image)
	if !ok {
		return
	}
	scale, offset := a.session.Mapper().Affine()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale.X, scale.Y)
	op.GeoM.Translate(offset.X, offset.Y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(a.artwork, op)
}

func (a *App) drawSelection(screen *ebiten.Image) {
	box, ok := a.session.SelectionBox()
	if !ok {
		return
	}
	size := box.Size()
	vector.StrokeRect(screen, float32(box.Min.X), float32(box.Min.Y), float32(size.X), float32(size.Y), 2, a.theme.Selection, true)
}

func (a *App) drawEditor(screen *ebiten.Image) {
	box, ok := a.session.EditorRect()
	if !ok {
		return
	}
	_, f, _ := a.session.Editing()
	size := box.Size()
	vector.DrawFilledRect(screen, float32(box.Min.X), float32(box.Min.Y), float32(size.X), float32(size.Y), a.theme.EditorBox, false)
	vector.StrokeRect(screen, float32(box.Min.X), float32(box.Min.Y), float32(size.X), float32(size.Y), 2, a.theme.Accent, false)

	px := int(math.Round(a.session.EditorFontPx()))
	if px < 8 {
		px = 8
	}
	face := a.session.Fonts().Face(px)
	s := f.Text()
	tw := a.measureString(face, s)
	x := int(box.Center().X) - tw/2
	ascent := face.Metrics().Ascent.Round()
	descent := face.Metrics().Descent.Round()
	baseline := int(box.Center().Y) + (ascent-descent)/2

	if start, end, sel := f.SelectionRange(); sel {
		sx := x + a.measureString(face, s[:start])
		ex := x + a.measureString(face, s[:end])
		vector.DrawFilledRect(screen, float32(sx), float32(baseline-ascent), float32(ex-sx), float32(ascent+descent), a.theme.Selection, false)
	}
	text.Draw(screen, s, face, x, baseline, a.theme.EditorText)

	// Blink at roughly 1Hz.
	if (a.frameTick/30)%2 == 0 {
		cx := x + a.measureString(face, s[:f.CaretByte])
		vector.StrokeLine(screen, float32(cx), float32(baseline-ascent), float32(cx), float32(baseline+descent), 2, a.theme.EditorText, false)
	}
}

func (a *App) drawButtonLabels(screen *ebiten.Image, face font.Face, buttons []actionButton, c color.RGBA) {
	for _, btn := range buttons {
		if btn.label == "" {
			continue
		}
		tw := a.measureString(face, btn.label)
		ascent := face.Metrics().Ascent.Round()
		descent := face.Metrics().Descent.Round()
		textHeight := ascent + descent
		x := btn.r.x + (btn.r.w-tw)/2
		baseline := btn.r.y + (btn.r.h+textHeight)/2 - descent
		text.Draw(screen, btn.label, face, x, baseline, c)
	}
}

func (a *App) drawStatus(screen *ebiten.Image, face font.Face, layout ui.Layout) {
	baseline := layout.StatusBar + (layout.StatusH+face.Metrics().Ascent.Round())/2 - 1
	text.Draw(screen, a.session.Status(), face, 12, baseline, a.theme.StatusText)

	var parts []string
	if a.session.HasImage() {
		c := a.session.CanvasSize()
		vp := a.session.Viewport()
		parts = append(parts,
			fmt.Sprintf("%dx%d", int(c.X), int(c.Y)),
			fmt.Sprintf("Zoom %d%%", vp.ZoomPercent()),
			fmt.Sprintf("Text %dpx", a.session.FontPx()),
		)
	}
	parts = append(parts, a.session.Fonts().Name())
	if n := len(a.templates); n > 0 {
		parts = append(parts, fmt.Sprintf("Template %d/%d", a.templateIdx+1, n))
	}
	right := "[ " + strings.Join(parts, " ] [ ") + " ]"
	x := layout.StageX + layout.StageW - a.measureString(face, right)
	text.Draw(screen, right, face, x, baseline, a.theme.StatusText)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	if outsideWidth < minWindowW {
		outsideWidth = minWindowW
	}
	if outsideHeight < minWindowH {
		outsideHeight = minWindowH
	}
	a.screenW = outsideWidth
	a.screenH = outsideHeight
	return outsideWidth, outsideHeight
}

func (a *App) currentViewportSize() (int, int) {
	if a.screenW > 0 && a.screenH > 0 {
		return a.screenW, a.screenH
	}
	w, h := ebiten.WindowSize()
	if w <= 0 {
		w = a.cfg.Window.Width
	}
	if h <= 0 {
		h = a.cfg.Window.Height
	}
	return w, h
}

func (a *App) layoutTopActions(face font.Face, layout ui.Layout) {
	a.topActions = a.topActions[:0]
	x := 10
	y := 4
	h := layout.MenuH - 10
	if h < 22 {
		h = 22
	}
	buttons := []actionButton{
		{id: "open", label: "Open"},
		{id: "export", label: "Download"},
		{id: "copy", label: "Copy"},
		{id: "template_prev", label: "<"},
		{id: "template_next", label: ">"},
	}
	mx, my := ebiten.CursorPosition()
	for _, btn := range buttons {
		tw := a.measureString(face, btn.label)
		pad := 14
		w := tw + pad*2
		if w < 40 {
			w = 40
		}
		r := rect{x: x, y: y, w: w, h: h}
		bg := color.RGBA{R: 0x3A, G: 0x3E, B: 0x4A, A: 0xFF}
		if r.contains(mx, my) {
			bg = color.RGBA{R: 0x4A, G: 0x50, B: 0x60, A: 0xFF}
		}
		a.frameBuffer.FillRect(r.x, r.y, r.w, r.h, bg)
		a.frameBuffer.StrokeRect(r.x, r.y, r.w, r.h, 1, a.theme.Border)
		btn.r = r
		a.topActions = append(a.topActions, btn)
		x += w + 8
	}
}

func (a *App) layoutToolbarControls(face font.Face, layout ui.Layout) {
	a.toolbarActions = a.toolbarActions[:0]
	a.colorSwatches = a.colorSwatches[:0]

	style := a.session.Style()
	x := 12
	y := layout.MenuH + 7
	h := layout.ToolbarH - 14
	if h < 20 {
		h = 20
	}
	mx, my := ebiten.CursorPosition()

	addBtn := func(id, label string, w int, active bool) rect {
		if w <= 0 {
			w = a.measureString(face, label) + 20
		}
		r := rect{x: x, y: y, w: w, h: h}
		bg := color.RGBA{R: 0x40, G: 0x45, B: 0x52, A: 0xFF}
		if active {
			bg = color.RGBA{R: 0x55, G: 0x5C, B: 0x6E, A: 0xFF}
		}
		if r.contains(mx, my) {
			bg = color.RGBA{R: 0x4C, G: 0x53, B: 0x63, A: 0xFF}
		}
		a.frameBuffer.FillRect(r.x, r.y, r.w, r.h, bg)
		a.frameBuffer.StrokeRect(r.x, r.y, r.w, r.h, 1, a.theme.Border)
		a.toolbarActions = append(a.toolbarActions, actionButton{id: id, label: label, r: r, active: active})
		x += w + 6
		return r
	}
	addSwatches := func(label string, stroke bool, current color.RGBA) {
		addBtn("", label, 0, false)
		size := h - 4
		for _, c := range a.palette {
			r := rect{x: x, y: y + 2, w: size, h: size}
			a.frameBuffer.FillRect(r.x, r.y, r.w, r.h, c)
			border := a.theme.Border
			if c == current {
				border = a.theme.Accent
			}
			a.frameBuffer.StrokeRect(r.x-1, r.y-1, r.w+2, r.h+2, 2, border)
			a.colorSwatches = append(a.colorSwatches, colorSwatch{value: c, stroke: stroke, r: r})
			x += size + 6
		}
		x += 8
	}

	addBtn("font_down", "A-", 34, false)
	addBtn("", fmt.Sprintf("%d", style.BaseFontSize), 40, true)
	addBtn("font_up", "A+", 34, false)
	x += 8
	addSwatches("Fill", false, style.Fill)
	addSwatches("Stroke", true, style.Stroke)

	addBtn("zoom_out", "-", 28, false)
	addBtn("reset_view", "100%", 0, false)
	addBtn("zoom_in", "+", 28, false)
	x += 8
	addBtn("delete", "Delete", 0, a.session.Selected() != nil)
}

// measureString returns the advance width of s in whole pixels.
func (a *App) measureString(face font.Face, s string) int {
	if face == nil || s == "" {
		return 0
	}
	adv := font.MeasureString(face, s)
	px := (int(adv) + 32) >> 6
	if px < 0 {
		px = 0
	}
	return px
}

// uiFace returns a cached chrome face.
func (a *App) uiFace(size int, bold bool) font.Face {
	key := fontKey{size: size, bold: bold}
	if f, ok := a.fonts.cache[key]; ok {
		return f
	}
	base := a.fonts.regular
	if bold {
		base = a.fonts.bold
	}
	if base == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(base, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	a.fonts.cache[key] = face
	return face
}
