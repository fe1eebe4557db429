package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"memecap/internal/app"
	"memecap/internal/config"
	"memecap/internal/export"
	"memecap/internal/platform"
	"memecap/internal/platform/headless"
	"memecap/internal/render"
	"memecap/internal/session"
	"memecap/internal/ui"
)

type captionFlags []string

func (c *captionFlags) String() string { return strings.Join(*c, ";") }

func (c *captionFlags) Set(v string) error {
	*c = append(*c, v)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "settings file (default: user config dir)")
		inPath     = flag.String("in", "", "image to open")
		outPath    = flag.String("out", "", "write the captioned PNG here and exit")
		preview    = flag.String("preview", "", "with -out, also write the composed window frame as PNG")
		scriptPath = flag.String("script", "", "with -out, replay a YAML event script before exporting")
		maxCanvas  = flag.Int("max-canvas", 0, "longest canvas side in pixels")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
		fontDir    = flag.String("font-dir", "", "extra directory searched for the caption face")
		captions   captionFlags
	)
	flag.Var(&captions, "caption", `caption as "x,y:text" in canvas pixels (repeatable)`)
	flag.Parse()

	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, cfgErr := config.Load(path)
	if *maxCanvas > 0 {
		cfg.MaxCanvas = *maxCanvas
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg = cfg.Normalize()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	if cfgErr != nil {
		logger.Warn("settings unreadable, using defaults", "path", path, "err", cfgErr)
	}

	dirs := render.DefaultFontDirs()
	if *fontDir != "" {
		dirs = append([]string{*fontDir}, dirs...)
	}
	fonts := render.NewFontBank(dirs...)
	logger.Debug("caption face", "name", fonts.Name())

	if *outPath != "" {
		b := batch{cfg: cfg, fonts: fonts, logger: logger}
		if err := b.run(*inPath, *outPath, *preview, *scriptPath, captions); err != nil {
			fmt.Fprintf(os.Stderr, "memecap: %v\n", err)
			os.Exit(1)
		}
		return
	}

	application := app.New(app.Options{Config: cfg, ConfigPath: path, Fonts: fonts, Logger: logger})
	if *inPath != "" {
		if _, err := application.Session().LoadFile(context.Background(), *inPath); err != nil {
			logger.Warn("initial image not loaded", "path", *inPath, "err", err)
		}
	}
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "memecap failed: %v\n", err)
		os.Exit(1)
	}
}

type batch struct {
	cfg    config.Config
	fonts  *render.FontBank
	logger *slog.Logger
}

func (b batch) run(in, out, preview, script string, captions []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	theme := ui.DefaultTheme()
	win := headless.NewWindow(platform.WindowConfig{
		Title:    "memecap",
		WidthPx:  b.cfg.Window.Width,
		HeightPx: b.cfg.Window.Height,
	})
	sess := session.New(session.Options{
		MaxCanvas:   b.cfg.MaxCanvas,
		Interaction: b.cfg.Interaction(),
		Style:       b.cfg.Style(),
		MinZoom:     b.cfg.MinZoom,
		MaxZoom:     b.cfg.MaxZoom,
		Fonts:       b.fonts,
		Logger:      b.logger,
	})
	restage := func() {
		w, h := win.SizePx()
		sess.SetStage(ui.ComputeLayout(w, h, theme, win.Scale()).Stage())
	}
	restage()

	if in != "" {
		p, err := sess.LoadFile(ctx, in)
		if err != nil {
			return err
		}
		if err := sess.Await(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", sess.Status(), err)
		}
	}

	for _, c := range captions {
		pos, text, err := parseCaption(c)
		if err != nil {
			return err
		}
		if _, err := sess.AddCaption(pos, text); err != nil {
			return err
		}
	}

	if script != "" {
		s, err := headless.LoadScript(script)
		if err != nil {
			return err
		}
		win.Push(s.Events(time.Now())...)
		for _, ev := range win.PollEvents() {
			switch ev.Type {
			case platform.EventResize:
				restage()
			case platform.EventDrop:
				if len(ev.Paths) == 0 {
					continue
				}
				p, err := sess.LoadFile(ctx, ev.Paths[0])
				if err != nil {
					return err
				}
				if err := sess.Await(ctx, p); err != nil {
					return fmt.Errorf("%s: %w", sess.Status(), err)
				}
				continue
			}
			sess.Dispatch(ctx, ev)
		}
	}

	if err := sess.Export(ctx, export.FileSink{Path: out}); err != nil {
		if errors.Is(err, session.ErrNoImage) {
			return fmt.Errorf("%s", sess.Status())
		}
		return err
	}
	b.logger.Info("exported", "path", out, "layers", len(sess.Layers()), "digest", sess.Digest())

	if preview == "" {
		return nil
	}
	w, h := win.SizePx()
	fb := render.NewFrameBuffer(w, h)
	scale, offset := sess.Mapper().Affine()
	layout := ui.DrawShell(fb, sess.Mapper().Display, theme, win.Scale())
	ui.DrawArtwork(fb, sess.Render(), scale, offset, layout.Stage())
	if box, ok := sess.SelectionBox(); ok {
		size := box.Size()
		fb.StrokeRect(int(box.Min.X), int(box.Min.Y), int(size.X), int(size.Y), 2, theme.Selection)
	}
	if err := win.Present(fb); err != nil {
		return err
	}
	frame, _ := win.LastFrame()
	_, err := export.FileSink{Path: preview}.Export(ctx, frame.RGBA())
	return err
}

// parseCaption reads "x,y:text".
func parseCaption(s string) (r2.Vec, string, error) {
	coords, text, ok := strings.Cut(s, ":")
	if !ok {
		return r2.Vec{}, "", fmt.Errorf("caption %q: want x,y:text", s)
	}
	xs, ys, ok := strings.Cut(coords, ",")
	if !ok {
		return r2.Vec{}, "", fmt.Errorf("caption %q: want x,y:text", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return r2.Vec{}, "", fmt.Errorf("caption %q: x: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return r2.Vec{}, "", fmt.Errorf("caption %q: y: %w", s, err)
	}
	return r2.Vec{X: x, Y: y}, text, nil
}
