//go:build !linux

package system

import (
	"context"
	"errors"

	"github.com/rook-computer/mirror/mirror"
)

const (
	kdText = iota
	kdGraphics
)

var errUnsupported = errors.New("console control is only supported on linux")

func (c *Console) setMode(int) error  { return errUnsupported }
func (c *Console) write(string) error { return errUnsupported }

// WatchExitKeys is a no-op outside linux.
func WatchExitKeys(_ context.Context, logger mirror.Logger, _ func()) {
	if logger != nil {
		logger.Debugf("input", "exit keys are only watched on linux")
	}
}
