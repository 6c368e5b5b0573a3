package shell

import (
	"fmt"
	"sync"
	"time"
)

const (
	// controlsHideAfter is how long the transport controls stay up after the
	// last interaction.
	controlsHideAfter = 3 * time.Second
	// touchDebounce drops repeat taps that arrive too close together.
	touchDebounce = 300 * time.Millisecond
)

// Controls tracks transport-control visibility for one session. Touches show
// the controls; an inactivity timer hides them again.
type Controls struct {
	mu        sync.Mutex
	visible   bool
	lastTouch time.Time
	hideTimer *time.Timer
	stopped   bool

	hideAfter time.Duration
	debounce  time.Duration
	emit      func(visible bool)

	now func() time.Time
}

func NewControls(emit func(visible bool)) *Controls {
	return &Controls{
		hideAfter: controlsHideAfter,
		debounce:  touchDebounce,
		emit:      emit,
		now:       time.Now,
	}
}

// Touch registers a tap on the player surface. Debounced taps are dropped.
func (c *Controls) Touch() {
	c.mu.Lock()

	now := c.now()
	if now.Sub(c.lastTouch) < c.debounce {
		c.mu.Unlock()
		return
	}
	c.lastTouch = now

	wasVisible := c.visible
	c.visible = true

	if c.hideTimer != nil {
		c.hideTimer.Stop()
	}
	if !c.stopped {
		c.hideTimer = time.AfterFunc(c.hideAfter, c.hide)
	}
	c.mu.Unlock()

	if !wasVisible {
		c.emit(true)
	}
}

func (c *Controls) hide() {
	c.mu.Lock()
	if c.stopped || !c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = false
	c.mu.Unlock()

	c.emit(false)
}

func (c *Controls) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.visible
}

// Stop cancels the hide timer. Further touches are ignored.
func (c *Controls) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.hideTimer != nil {
		c.hideTimer.Stop()
	}
}

// FormatTime renders a position as m:ss for the transport readout.
func FormatTime(millis int64) string {
	if millis < 0 {
		millis = 0
	}

	totalSeconds := millis / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
