package render

import (
	"context"
	"image"
	"image/color"

	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/mirror/mirror"
)

const DefaultFramebuffer = "/dev/fb0"

// FramebufferOutput presents frames on a Linux framebuffer device.
//
// In fullscreen mode the frame is stretched over the whole device. Otherwise
// it is copied 1:1 with its top-left corner at (X, Y), clipped to the device.
type FramebufferOutput struct {
	Device     string
	Fullscreen bool
	X, Y       int
	Logger     mirror.Logger

	fbDev *fb.Device
}

func NewFramebufferOutput(device string) *FramebufferOutput {
	return &FramebufferOutput{Device: device, Logger: mirror.NoopLogger{}}
}

func (o *FramebufferOutput) Open(ctx context.Context) error {
	if o.Device == "" {
		o.Device = DefaultFramebuffer
	}
	if o.Logger == nil {
		o.Logger = mirror.NoopLogger{}
	}
	dev, err := fb.Open(o.Device)
	if err != nil {
		return err
	}
	o.fbDev = dev
	bounds := dev.Bounds()
	o.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d fullscreen=%v", o.Device, bounds.Dx(), bounds.Dy(), o.Fullscreen)
	return nil
}

func (o *FramebufferOutput) Present(frame *image.RGBA) error {
	if o.fbDev == nil {
		return nil
	}
	if o.Fullscreen {
		stretchToFB(o.fbDev, frame)
	} else {
		copyToFB(o.fbDev, frame, image.Pt(o.X, o.Y))
	}
	return nil
}

func (o *FramebufferOutput) Close() error {
	if o.fbDev == nil {
		return nil
	}
	o.fbDev.Close()
	o.fbDev = nil
	return nil
}

// stretchToFB scales the frame over the whole device by nearest-neighbour sampling.
func stretchToFB(dev *fb.Device, frame *image.RGBA) {
	bounds := dev.Bounds()
	fbWidth, fbHeight := bounds.Dx(), bounds.Dy()
	src := frame.Bounds()
	if src.Empty() || fbWidth == 0 || fbHeight == 0 {
		return
	}
	for y := 0; y < fbHeight; y++ {
		sy := src.Min.Y + (y*src.Dy())/fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := src.Min.X + (x*src.Dx())/fbWidth
			pixel := frame.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}

// copyToFB writes the frame unscaled at offset.
func copyToFB(dev *fb.Device, frame *image.RGBA, offset image.Point) {
	bounds := dev.Bounds()
	src := frame.Bounds()
	dst := src.Sub(src.Min).Add(bounds.Min).Add(offset).Intersect(bounds)
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		sy := src.Min.Y + y - bounds.Min.Y - offset.Y
		for x := dst.Min.X; x < dst.Max.X; x++ {
			sx := src.Min.X + x - bounds.Min.X - offset.X
			pixel := frame.RGBAAt(sx, sy)
			dev.Set(x, y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
