package render

import (
	"context"
	"image"
)

// Output presents finished frames to a device.
//
//go:generate mockgen -source=render.go -destination=mocks/mock_output.go -package=mocks
type Output interface {
	// Open acquires the device. It is called once before the first frame.
	Open(ctx context.Context) error
	// Present copies frame to the device. frame is reused by the caller
	// after Present returns.
	Present(frame *image.RGBA) error
	Close() error
}

// NoopOutput discards every frame.
type NoopOutput struct{}

func (NoopOutput) Open(context.Context) error { return nil }
func (NoopOutput) Present(*image.RGBA) error  { return nil }
func (NoopOutput) Close() error               { return nil }
