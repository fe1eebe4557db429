// Package config loads and saves the editor settings file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"memecap/internal/caption"
	"memecap/internal/imageio"
	"memecap/internal/interact"
	"memecap/internal/view"
)

const (
	appDir   = "memecap"
	fileName = "config.yaml"
)

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config mirrors config.yaml. Zero or missing values fall back to defaults
// in Normalize.
type Config struct {
	MaxCanvas       int     `yaml:"max_canvas"`
	BaseFontSize    int     `yaml:"base_font_size"`
	FillColor       string  `yaml:"fill_color"`
	StrokeColor     string  `yaml:"stroke_color"`
	ClickDistancePx float64 `yaml:"click_distance_px"`
	ClickTimeMs     int     `yaml:"click_time_ms"`
	MinZoom         float64 `yaml:"min_zoom"`
	MaxZoom         float64 `yaml:"max_zoom"`
	ZoomStep        float64 `yaml:"zoom_step"`
	TemplateDir     string  `yaml:"template_dir,omitempty"`
	ExportDir       string  `yaml:"export_dir,omitempty"`
	LogLevel        string  `yaml:"log_level"`
	Window          Window  `yaml:"window"`
}

func Default() Config {
	style := caption.DefaultStyle()
	return Config{
		MaxCanvas:       imageio.DefaultMaxCanvas,
		BaseFontSize:    style.BaseFontSize,
		FillColor:       caption.HexColor(style.Fill),
		StrokeColor:     caption.HexColor(style.Stroke),
		ClickDistancePx: interact.DefaultClickDistance,
		ClickTimeMs:     int(interact.DefaultClickTime / time.Millisecond),
		MinZoom:         view.MinZoom,
		MaxZoom:         view.MaxZoom,
		ZoomStep:        view.ZoomStep,
		LogLevel:        "info",
		Window:          Window{Width: 1280, Height: 860},
	}
}

// Normalize replaces unusable values with defaults.
func (c Config) Normalize() Config {
	d := Default()
	if c.MaxCanvas <= 0 {
		c.MaxCanvas = d.MaxCanvas
	}
	if c.BaseFontSize == 0 {
		c.BaseFontSize = d.BaseFontSize
	}
	c.BaseFontSize = caption.ClampBaseFontSize(c.BaseFontSize)
	if _, err := caption.ParseHexColor(c.FillColor); err != nil {
		c.FillColor = d.FillColor
	}
	if _, err := caption.ParseHexColor(c.StrokeColor); err != nil {
		c.StrokeColor = d.StrokeColor
	}
	if c.ClickDistancePx <= 0 {
		c.ClickDistancePx = d.ClickDistancePx
	}
	if c.ClickTimeMs <= 0 {
		c.ClickTimeMs = d.ClickTimeMs
	}
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = d.MaxZoom
		if c.MaxZoom < c.MinZoom {
			c.MaxZoom = c.MinZoom
		}
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = d.ZoomStep
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window = d.Window
	}
	return c
}

func (c Config) Style() caption.StyleConfig {
	s := caption.DefaultStyle()
	if fill, err := caption.ParseHexColor(c.FillColor); err == nil {
		s.Fill = fill
	}
	if stroke, err := caption.ParseHexColor(c.StrokeColor); err == nil {
		s.Stroke = stroke
	}
	s.BaseFontSize = caption.ClampBaseFontSize(c.BaseFontSize)
	return s
}

// SetStyle stores a style back so it survives restarts.
func (c *Config) SetStyle(s caption.StyleConfig) {
	c.FillColor = caption.HexColor(s.Fill)
	c.StrokeColor = caption.HexColor(s.Stroke)
	c.BaseFontSize = caption.ClampBaseFontSize(s.BaseFontSize)
}

func (c Config) Interaction() interact.Config {
	return interact.Config{
		ClickDistance: c.ClickDistancePx,
		ClickTime:     time.Duration(c.ClickTimeMs) * time.Millisecond,
		ZoomStep:      c.ZoomStep,
	}
}

func (c Config) Viewport() *view.Viewport {
	v := view.NewViewport()
	v.MinZoom, v.MaxZoom = c.MinZoom, c.MaxZoom
	return v
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultPath is config.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads path. A missing file yields defaults and no error; a malformed
// file yields defaults and the parse error so the caller can report it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.Normalize(), nil
}

func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg.Normalize())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
