// Package rectpack provides 2D rectangle packing structures for texture
// atlases. Packers place axis-aligned rectangles into a fixed-size region
// without overlap; they track occupancy only, never pixel data.
//
// Packers are pure in-memory data structures with deterministic placement
// decisions. They are not safe for concurrent use.
package rectpack

// Packer places rectangles into a fixed width x height region.
type Packer interface {
	// Insert finds space for a w x h rectangle and returns its top-left
	// position. On failure it returns ok == false and leaves the packer
	// unchanged. Inserting a degenerate rectangle (w or h < 1) is a
	// contract violation and panics.
	Insert(w, h int) (x, y int, ok bool)

	// Reset discards all placements, restoring the initial empty state.
	Reset()

	// Width returns the packing region width.
	Width() int

	// Height returns the packing region height.
	Height() int

	// PercentFull returns the fraction of the region covered by
	// placed rectangles, in [0, 1].
	PercentFull() float64
}

// New returns the default packer for atlas plots, currently a skyline
// packer. Callers with uniform-height workloads may prefer NewShelf.
func New(width, height int) Packer {
	return NewSkyline(width, height)
}
