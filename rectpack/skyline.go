package rectpack

import "fmt"

// Skyline implements skyline-based rectangle packing.
//
// The packer tracks the occupied-height profile of the region as an
// ordered run of horizontal segments, the "skyline". Each insert scans
// the skyline for the span with the lowest resulting top that can hold
// the rectangle (ties broken by the leftmost position), places the
// rectangle there and raises the skyline over the span.
//
// Compared to shelf packing, the skyline adapts to mixed rectangle
// heights at the cost of a linear scan per insert. Skylines stay short
// for plot-sized regions, so the scan is cheap in practice.
type Skyline struct {
	width  int
	height int

	// segments is ordered by x and always spans the full width.
	segments []segment

	areaSoFar int
}

// segment is one horizontal run of the skyline: the region from x to
// x+width is occupied up to height y.
type segment struct {
	x     int
	y     int
	width int
}

// NewSkyline creates a skyline packer for the given region. Dimensions
// must be positive.
func NewSkyline(width, height int) *Skyline {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("rectpack: invalid region %dx%d", width, height))
	}
	s := &Skyline{
		width:    width,
		height:   height,
		segments: make([]segment, 0, 8),
	}
	s.Reset()
	return s
}

// Width returns the packing region width.
func (s *Skyline) Width() int { return s.width }

// Height returns the packing region height.
func (s *Skyline) Height() int { return s.height }

// Reset restores the skyline to a single full-width segment at height
// zero, discarding all placement history.
func (s *Skyline) Reset() {
	s.areaSoFar = 0
	s.segments = append(s.segments[:0], segment{x: 0, y: 0, width: s.width})
}

// PercentFull returns the fraction of the region covered by placed
// rectangles.
func (s *Skyline) PercentFull() float64 {
	return float64(s.areaSoFar) / float64(s.width*s.height)
}

// Insert places a w x h rectangle at the lowest position the skyline
// allows, preferring the leftmost candidate among equal heights. On
// failure the skyline is left unchanged.
func (s *Skyline) Insert(w, h int) (x, y int, ok bool) {
	if w < 1 || h < 1 {
		panic(fmt.Sprintf("rectpack: degenerate insert %dx%d", w, h))
	}
	if w > s.width || h > s.height {
		return 0, 0, false
	}

	// Find the position with the lowest resulting top.
	bestIndex := -1
	bestX := 0
	bestY := s.height + 1
	for i := range s.segments {
		top, fits := s.rectangleFits(i, w, h)
		if !fits {
			continue
		}
		if top < bestY || (top == bestY && s.segments[i].x < bestX) {
			bestIndex = i
			bestX = s.segments[i].x
			bestY = top
		}
	}
	if bestIndex < 0 {
		return 0, 0, false
	}

	s.addLevel(bestIndex, bestX, bestY, w, h)
	s.areaSoFar += w * h
	return bestX, bestY, true
}

// rectangleFits reports whether a w x h rectangle starting at segment
// index fits, and at which resulting top. The rectangle may span several
// segments; its top is the maximum height among them.
func (s *Skyline) rectangleFits(index, w, h int) (top int, fits bool) {
	x := s.segments[index].x
	if x+w > s.width {
		return 0, false
	}

	widthLeft := w
	y := s.segments[index].y
	for i := index; widthLeft > 0; i++ {
		if s.segments[i].y > y {
			y = s.segments[i].y
		}
		if y+h > s.height {
			return 0, false
		}
		widthLeft -= s.segments[i].width
	}
	return y, true
}

// addLevel raises the skyline over [x, x+w) to y+h: a new segment is
// inserted at index, fully covered segments are removed, a partially
// covered trailing segment is shrunk, and same-height neighbors are
// merged.
func (s *Skyline) addLevel(index, x, y, w, h int) {
	s.segments = append(s.segments, segment{})
	copy(s.segments[index+1:], s.segments[index:])
	s.segments[index] = segment{x: x, y: y + h, width: w}

	// Consume the segments now shadowed by the new one.
	for i := index + 1; i < len(s.segments); {
		prev := s.segments[i-1]
		cur := s.segments[i]
		overlap := prev.x + prev.width - cur.x
		if overlap <= 0 {
			break
		}
		if overlap >= cur.width {
			s.segments = append(s.segments[:i], s.segments[i+1:]...)
			continue
		}
		s.segments[i].x += overlap
		s.segments[i].width -= overlap
		break
	}

	// Merge adjacent segments at the same height.
	for i := 0; i < len(s.segments)-1; {
		if s.segments[i].y == s.segments[i+1].y {
			s.segments[i].width += s.segments[i+1].width
			s.segments = append(s.segments[:i+1], s.segments[i+2:]...)
		} else {
			i++
		}
	}
}
