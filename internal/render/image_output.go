package render

import (
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// ImageOutput keeps the last presented frame in memory. It backs headless
// runs, the simulator and the debug frame endpoint.
type ImageOutput struct {
	// SnapshotPath, when set, receives the last frame as PNG on Close.
	SnapshotPath string

	mu     sync.Mutex
	last   *image.RGBA
	frames atomic.Int64
}

func NewImageOutput(snapshotPath string) *ImageOutput {
	return &ImageOutput{SnapshotPath: snapshotPath}
}

func (o *ImageOutput) Open(context.Context) error { return nil }

func (o *ImageOutput) Present(frame *image.RGBA) error {
	o.mu.Lock()
	if o.last == nil || o.last.Bounds() != frame.Bounds() {
		o.last = image.NewRGBA(frame.Bounds())
	}
	copy(o.last.Pix, frame.Pix)
	o.mu.Unlock()
	o.frames.Add(1)
	return nil
}

// Frames returns how many frames were presented.
func (o *ImageOutput) Frames() int64 { return o.frames.Load() }

// Frame returns a copy of the last presented frame, or nil before the first one.
func (o *ImageOutput) Frame() *image.RGBA {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return nil
	}
	out := image.NewRGBA(o.last.Bounds())
	copy(out.Pix, o.last.Pix)
	return out
}

// WritePNG encodes the last frame. It returns false before the first frame.
func (o *ImageOutput) WritePNG(w io.Writer) (bool, error) {
	frame := o.Frame()
	if frame == nil {
		return false, nil
	}
	return true, png.Encode(w, frame)
}

func (o *ImageOutput) Close() error {
	if o.SnapshotPath == "" {
		return nil
	}
	frame := o.Frame()
	if frame == nil {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(o.SnapshotPath), ".snapshot-*.png")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, frame); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), o.SnapshotPath)
}
