//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealWatcher watches the gauge line on actual hardware using Linux GPIO
// character device edge events. The kernel delivers one event per raw
// falling edge; the handler runs on the event goroutine.
type RealWatcher struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealWatcher requests the gauge pin and starts delivering falling
// edges to handler. The reed switch shorts the pin to ground on each tip,
// so the line is requested with pull-up and the tip is the falling edge.
func NewRealWatcher(pin int, handler EdgeHandler) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			handler(evt.Timestamp)
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request gauge pin %d: %w", pin, err)
	}

	return &RealWatcher{chip: chip, line: line}, nil
}

// Close stops edge delivery and releases GPIO resources.
// Reconfigures the pin to input with pull-down (matching Pi boot defaults)
// before closing to ensure clean state for system shutdown/reboot.
func (w *RealWatcher) Close() error {
	var errs []error

	if w.line != nil {
		if err := w.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure gauge pin: %w", err))
		}
		if err := w.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gauge pin: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
