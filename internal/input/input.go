// Package input turns signals, key presses and simulator requests into
// events for the render loop.
package input

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

type Kind int

const (
	Quit Kind = iota + 1
	Resize
	Reload
)

func (k Kind) String() string {
	switch k {
	case Quit:
		return "quit"
	case Resize:
		return "resize"
	case Reload:
		return "reload"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one input event. Width and Height are device pixels and only set
// for Resize.
type Event struct {
	Kind   Kind
	Width  int
	Height int
	Source string
}

// Sender accepts events from any goroutine.
type Sender interface {
	Send(ev Event) bool
}

// Bus is a buffered event queue drained by the render loop at frame
// boundaries. A quit request is sticky and survives a full buffer.
type Bus struct {
	ch   chan Event
	quit atomic.Bool
}

const defaultBuffer = 16

func NewBus() *Bus { return &Bus{ch: make(chan Event, defaultBuffer)} }

// Send queues ev without blocking. It reports false when the event was
// dropped because the buffer is full.
func (b *Bus) Send(ev Event) bool {
	if ev.Kind == Quit {
		b.quit.Store(true)
	}
	select {
	case b.ch <- ev:
		return true
	default:
		return ev.Kind == Quit
	}
}

// Wait returns a channel that receives queued events, for selecting while
// the loop sleeps.
func (b *Bus) Wait() <-chan Event { return b.ch }

// Drain returns every queued event without blocking.
func (b *Bus) Drain() []Event {
	var events []Event
	for {
		select {
		case ev := <-b.ch:
			events = append(events, ev)
		default:
			if b.quit.Load() && !containsQuit(events) {
				events = append(events, Event{Kind: Quit, Source: "bus"})
			}
			return events
		}
	}
}

// QuitRequested reports whether a quit was ever sent.
func (b *Bus) QuitRequested() bool { return b.quit.Load() }

func containsQuit(events []Event) bool {
	for _, ev := range events {
		if ev.Kind == Quit {
			return true
		}
	}
	return false
}

// WatchSignals forwards SIGHUP as Reload and SIGINT/SIGTERM as Quit until
// ctx is done.
func WatchSignals(ctx context.Context, dst Sender) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				if ev, ok := FromSignal(sig); ok {
					dst.Send(ev)
				}
			}
		}
	}()
}

// FromSignal maps a process signal to an event.
func FromSignal(sig os.Signal) (Event, bool) {
	switch sig {
	case syscall.SIGHUP:
		return Event{Kind: Reload, Source: "signal"}, true
	case syscall.SIGINT, syscall.SIGTERM:
		return Event{Kind: Quit, Source: "signal"}, true
	}
	return Event{}, false
}
