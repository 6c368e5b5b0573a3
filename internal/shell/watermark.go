// Package shell drives the presentation chrome around the player: the
// moving ownership watermark, transport-control visibility, and the
// fullscreen orientation dance. The gateway computes all of it server-side
// and pushes plain draw instructions to the client.
package shell

import (
	"context"
	"sync"
	"time"
)

// Watermark box dimensions in the client's layout units.
const (
	watermarkWidth  = 150
	watermarkHeight = 40
)

// defaultWatermarkInterval matches one corner-to-corner animation step plus
// its dwell time.
const defaultWatermarkInterval = 1100 * time.Millisecond

type Corner int

const (
	CornerTopLeft Corner = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

func (c Corner) String() string {
	switch c {
	case CornerTopLeft:
		return "top_left"
	case CornerTopRight:
		return "top_right"
	case CornerBottomRight:
		return "bottom_right"
	case CornerBottomLeft:
		return "bottom_left"
	}

	return "unknown"
}

// next returns the clockwise neighbour.
func (c Corner) next() Corner {
	return (c + 1) % 4
}

// Position returns the watermark anchor for a corner in a container of the
// given size.
func (c Corner) Position(containerWidth, containerHeight int) (x, y int) {
	switch c {
	case CornerTopRight:
		return containerWidth - watermarkWidth, 0
	case CornerBottomRight:
		return containerWidth - watermarkWidth, containerHeight - watermarkHeight
	case CornerBottomLeft:
		return 0, containerHeight - watermarkHeight
	}

	return 0, 0
}

// WatermarkUpdate is one draw instruction pushed to the client.
type WatermarkUpdate struct {
	Text   string `json:"text"`
	Corner string `json:"corner"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// WatermarkScheduler cycles the viewer's identity through the four corners
// of the player so a screen recording always carries it somewhere.
type WatermarkScheduler struct {
	text     string
	interval time.Duration
	emit     func(WatermarkUpdate)

	mu     sync.Mutex
	width  int
	height int
}

func NewWatermarkScheduler(text string, interval time.Duration, emit func(WatermarkUpdate)) *WatermarkScheduler {
	if interval <= 0 {
		interval = defaultWatermarkInterval
	}

	return &WatermarkScheduler{
		text:     text,
		interval: interval,
		emit:     emit,
	}
}

// SetContainerSize records the client's player dimensions. Zero sizes pause
// emission until a real layout arrives.
func (s *WatermarkScheduler) SetContainerSize(width, height int) {
	s.mu.Lock()
	s.width = width
	s.height = height
	s.mu.Unlock()
}

// Update returns the draw instruction for a corner with the current layout.
func (s *WatermarkScheduler) Update(corner Corner) WatermarkUpdate {
	s.mu.Lock()
	width, height := s.width, s.height
	s.mu.Unlock()

	x, y := corner.Position(width, height)

	return WatermarkUpdate{
		Text:   s.text,
		Corner: corner.String(),
		X:      x,
		Y:      y,
	}
}

// Run emits corner updates until the context is done. A session without a
// watermark identity never starts the loop.
func (s *WatermarkScheduler) Run(ctx context.Context) {
	if s.text == "" {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	corner := CornerTopLeft
	for {
		s.mu.Lock()
		sized := s.width > 0 && s.height > 0
		s.mu.Unlock()

		if sized {
			s.emit(s.Update(corner))
			corner = corner.next()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
