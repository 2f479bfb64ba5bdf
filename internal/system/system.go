// Package system talks to the Linux console the mirror runs on: console
// graphics mode, the blinking cursor and evdev keyboards.
package system

import "github.com/rook-computer/mirror/mirror"

// Console switches the active virtual terminal to graphics mode with a
// hidden cursor while the mirror owns the framebuffer.
type Console struct {
	Logger mirror.Logger
	// Paths are tried in order; the first one that accepts the request wins.
	Paths []string
}

func NewConsole(logger mirror.Logger) *Console {
	if logger == nil {
		logger = mirror.NoopLogger{}
	}
	return &Console{Logger: logger, Paths: []string{"/dev/tty", "/dev/tty0"}}
}

// Acquire enters graphics mode and hides the cursor. Failures are logged
// and returned; the mirror keeps running without them.
func (c *Console) Acquire() error {
	err := c.setMode(kdGraphics)
	c.report("KD_GRAPHICS", err)
	cursorErr := c.write("\x1b[?25l")
	c.report("hide cursor", cursorErr)
	if err != nil {
		return err
	}
	return cursorErr
}

// Release restores text mode and shows the cursor again.
func (c *Console) Release() error {
	cursorErr := c.write("\x1b[?25h")
	c.report("show cursor", cursorErr)
	err := c.setMode(kdText)
	c.report("KD_TEXT", err)
	if err != nil {
		return err
	}
	return cursorErr
}

func (c *Console) report(what string, err error) {
	if err != nil {
		c.Logger.Warnf("tty", "%s failed: %v", what, err)
		return
	}
	c.Logger.Debugf("tty", "%s done", what)
}

// ExitKeys are the evdev key codes that stop the mirror: ESC, Q and F4.
var ExitKeys = []uint16{1, 16, 62}
