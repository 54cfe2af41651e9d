package rectpack

import "fmt"

// Shelf implements shelf-based rectangle packing.
//
// Rectangles are placed left-to-right on horizontal "shelves". Each shelf
// is as tall as the tallest rectangle placed on it; when a rectangle does
// not fit, a new shelf is opened below. Shelf packing wastes space on
// mixed heights but is simpler and faster than the skyline for workloads
// of near-uniform height, such as glyph masks rendered at one size.
type Shelf struct {
	width   int
	height  int
	padding int
	shelves []shelfRow

	areaSoFar int
}

// shelfRow is one horizontal strip of the region.
type shelfRow struct {
	y      int // top of the strip
	height int // tallest rectangle placed so far
	x      int // next free x position
}

// NewShelf creates a shelf packer for the given region. padding pixels
// are reserved to the right of and below every placed rectangle, which
// keeps bilinear samples from bleeding between neighbors. Dimensions
// must be positive and padding non-negative.
func NewShelf(width, height, padding int) *Shelf {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("rectpack: invalid region %dx%d", width, height))
	}
	if padding < 0 {
		panic(fmt.Sprintf("rectpack: negative padding %d", padding))
	}
	return &Shelf{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelfRow, 0, 16),
	}
}

// Width returns the packing region width.
func (s *Shelf) Width() int { return s.width }

// Height returns the packing region height.
func (s *Shelf) Height() int { return s.height }

// Reset discards all placements. Shelf capacity is retained.
func (s *Shelf) Reset() {
	s.shelves = s.shelves[:0]
	s.areaSoFar = 0
}

// PercentFull returns the fraction of the region covered by placed
// rectangles. Padding counts as free space.
func (s *Shelf) PercentFull() float64 {
	return float64(s.areaSoFar) / float64(s.width*s.height)
}

// Insert places a w x h rectangle on the first shelf with room, extending
// the last shelf or opening a new one when needed. On failure the packer
// is left unchanged.
func (s *Shelf) Insert(w, h int) (x, y int, ok bool) {
	if w < 1 || h < 1 {
		panic(fmt.Sprintf("rectpack: degenerate insert %dx%d", w, h))
	}

	paddedW := w + s.padding
	paddedH := h + s.padding

	for i := range s.shelves {
		row := &s.shelves[i]
		if row.x+paddedW > s.width {
			continue
		}
		if h > row.height {
			// Taller than the shelf. The last shelf may grow
			// downward if there is room below it.
			if i == len(s.shelves)-1 && row.y+paddedH <= s.height {
				row.height = h
				x, y = row.x, row.y
				row.x += paddedW
				s.areaSoFar += w * h
				return x, y, true
			}
			continue
		}
		x, y = row.x, row.y
		row.x += paddedW
		s.areaSoFar += w * h
		return x, y, true
	}

	// Open a new shelf below the last one.
	newY := 0
	if n := len(s.shelves); n > 0 {
		last := s.shelves[n-1]
		newY = last.y + last.height + s.padding
	}
	if newY+paddedH > s.height {
		return 0, 0, false
	}

	s.shelves = append(s.shelves, shelfRow{y: newY, height: h, x: paddedW})
	s.areaSoFar += w * h
	return 0, newY, true
}
