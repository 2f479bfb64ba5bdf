//go:build linux

package system

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

func (c *Console) setMode(mode int) error {
	return c.each(func(p string) error {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		defer unix.Close(fd)
		if err := unix.IoctlSetInt(fd, kdSetMode, mode); err != nil {
			return fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
		}
		return nil
	})
}

func (c *Console) write(seq string) error {
	return c.each(func(p string) error {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.WriteString(seq)
		return err
	})
}

func (c *Console) each(fn func(path string) error) error {
	var errs []error
	for _, p := range c.Paths {
		err := fn(p)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return errors.New("no console paths")
	}
	return errors.Join(errs...)
}
