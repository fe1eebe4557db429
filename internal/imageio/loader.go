package imageio

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
)

// Loaded is a finished load.
type Loaded struct {
	Name string
	// Image is already resampled to the canvas size.
	Image *image.RGBA
	// Original is the decoded size before fitting.
	Original image.Point
}

// Pending is the future of one Load call. Seq orders requests: a completion
// is current only while its Seq is the loader's latest.
type Pending struct {
	Seq uint64

	done chan struct{}
	res  Loaded
	err  error
}

func (p *Pending) Done() <-chan struct{} { return p.done }

// Ready reports completion without blocking.
func (p *Pending) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result is valid once Done is closed.
func (p *Pending) Result() (Loaded, error) {
	<-p.done
	return p.res, p.err
}

// Wait blocks until the load finishes or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Loaded, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return Loaded{}, ctx.Err()
	}
}

// Loader decodes images off the event goroutine. Finished requests are
// published on Completed for the event goroutine to drain; it decides with
// IsLatest whether a completion may be applied.
type Loader struct {
	MaxCanvas int

	seq       atomic.Uint64
	completed chan *Pending
	logger    *slog.Logger
}

func NewLoader(maxCanvas int, logger *slog.Logger) *Loader {
	if maxCanvas <= 0 {
		maxCanvas = DefaultMaxCanvas
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{MaxCanvas: maxCanvas, completed: make(chan *Pending, 16), logger: logger}
}

// Load starts decoding src and returns immediately.
func (l *Loader) Load(ctx context.Context, src Source) *Pending {
	p := &Pending{Seq: l.seq.Add(1), done: make(chan struct{})}
	go func() {
		p.res, p.err = l.decode(ctx, src)
		close(p.done)
		if p.err != nil {
			l.logger.WarnContext(ctx, "image load failed", "name", src.Name, "seq", p.Seq, "err", p.err)
		} else {
			l.logger.InfoContext(ctx, "image loaded", "name", src.Name, "seq", p.Seq,
				"size", p.res.Original, "canvas", p.res.Image.Bounds().Size())
		}
		l.publish(p)
	}()
	return p
}

// publish never blocks. When nobody drains Completed and the buffer is full,
// the lowest Seq is evicted, so the newest request is always still queued.
func (l *Loader) publish(p *Pending) {
	for {
		select {
		case l.completed <- p:
			return
		default:
		}
		select {
		case old := <-l.completed:
			if old.Seq > p.Seq {
				p = old
			}
		default:
		}
	}
}

func (l *Loader) decode(ctx context.Context, src Source) (Loaded, error) {
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}
	img, _, err := Decode(src)
	if err != nil {
		return Loaded{}, err
	}
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}
	return Loaded{Name: src.Name, Image: Fit(img, l.MaxCanvas), Original: img.Bounds().Size()}, nil
}

// Completed delivers every finished Pending, stale ones included.
func (l *Loader) Completed() <-chan *Pending { return l.completed }

// Latest is the Seq of the most recent Load call.
func (l *Loader) Latest() uint64 { return l.seq.Load() }

func (l *Loader) IsLatest(p *Pending) bool {
	return p != nil && p.Seq == l.seq.Load()
}
