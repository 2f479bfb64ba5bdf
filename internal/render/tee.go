package render

import (
	"context"
	"errors"
	"image"
)

// Tee presents every frame to all outputs, e.g. the framebuffer plus an
// ImageOutput backing the debug frame endpoint.
type Tee []Output

func (t Tee) Open(ctx context.Context) error {
	for i, o := range t {
		if err := o.Open(ctx); err != nil {
			for _, opened := range t[:i] {
				_ = opened.Close()
			}
			return err
		}
	}
	return nil
}

func (t Tee) Present(frame *image.RGBA) error {
	var errs []error
	for _, o := range t {
		errs = append(errs, o.Present(frame))
	}
	return errors.Join(errs...)
}

func (t Tee) Close() error {
	var errs []error
	for _, o := range t {
		errs = append(errs, o.Close())
	}
	return errors.Join(errs...)
}
