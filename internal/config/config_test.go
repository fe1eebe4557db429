package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memecap/internal/caption"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMalformedFileReportsAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_canvas: [oops"), 0o644))
	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "max_canvas: 640\nfill_color: \"#ffcc00\"\nbase_font_size: 500\nclick_time_ms: -3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.MaxCanvas)
	assert.Equal(t, caption.MaxBaseFontSize, cfg.BaseFontSize)
	assert.Equal(t, Default().ClickTimeMs, cfg.ClickTimeMs)
	assert.Equal(t, Default().StrokeColor, cfg.StrokeColor)

	style := cfg.Style()
	assert.Equal(t, uint8(0xcc), style.Fill.G)
	assert.Equal(t, 200*time.Millisecond, Default().Interaction().ClickTime)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	style := cfg.Style()
	style.BaseFontSize = 42
	cfg.SetStyle(style)
	cfg.TemplateDir = "/srv/templates"
	require.NoError(t, Save(path, cfg))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestNormalizeRepairsZoomRange(t *testing.T) {
	cfg := Default()
	cfg.MinZoom, cfg.MaxZoom, cfg.ZoomStep = 2, 1, 0.5
	cfg = cfg.Normalize()
	assert.Equal(t, 2.0, cfg.MinZoom)
	assert.Equal(t, Default().MaxZoom, cfg.MaxZoom)
	assert.Equal(t, Default().ZoomStep, cfg.ZoomStep)
	v := cfg.Viewport()
	assert.Equal(t, 2.0, v.MinZoom)
}

func TestTemplatesListsImagesOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", ".hidden.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	list, err := Templates(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.PNG")}, list)

	list, err = Templates("")
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestDebouncerRunsOnlyLast(t *testing.T) {
	d := &debouncer{window: 20 * time.Millisecond}
	var calls, last atomic.Int32
	for i := 1; i <= 5; i++ {
		d.trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestWatchTemplatesSeesNewFile(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := WatchTemplates(ctx, dir, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doge.png"), []byte("x"), 0o644))

	select {
	case list := <-updates:
		assert.Equal(t, []string{filepath.Join(dir, "doge.png")}, list)
	case <-time.After(5 * time.Second):
		t.Fatal("no template update")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}
