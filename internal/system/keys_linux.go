//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rook-computer/mirror/mirror"
	"golang.org/x/sys/unix"
)

const evKey = 0x01

// WatchExitKeys watches evdev devices under /dev/input/event* and calls
// onExit once when one of ExitKeys is pressed.
//
// It is best-effort: without readable input devices it logs and returns.
func WatchExitKeys(ctx context.Context, logger mirror.Logger, onExit func()) {
	if onExit == nil {
		return
	}
	if logger == nil {
		logger = mirror.NoopLogger{}
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		logger.Infof("input", "no evdev devices found for exit keys")
		return
	}

	var once sync.Once
	trigger := func(code uint16) {
		once.Do(func() {
			logger.Infof("input", "key %d pressed: quitting", code)
			onExit()
		})
	}

	for _, p := range paths {
		go watchDevice(ctx, p, tvSize, eventSize, trigger)
	}
}

func watchDevice(ctx context.Context, path string, tvSize, eventSize int, trigger func(uint16)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	buf := make([]byte, 64*eventSize)
	for ctx.Err() == nil {
		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
			code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
			if typ == evKey && value == 1 && slices.Contains(ExitKeys, code) {
				trigger(code)
				return
			}
		}
	}
}
