package atlas

import (
	"fmt"
	"image"
)

// Limits imposed by the packed locator encodings.
const (
	// MaxPages is the maximum number of backing textures per atlas.
	// Bounded by the two page bits crammed into AtlasLocator UVs.
	MaxPages = 4

	// MaxPlots is the maximum number of plots per page. Bounded by the
	// per-page bitmask in BulkUseUpdater.
	MaxPlots = 32

	// maxPlotCoord is the largest coordinate that fits in the 13 low
	// bits of an AtlasLocator U value.
	maxPlotCoord = 0x1FFF

	// pageMask covers the page index bits (13 and 14) of a U value.
	pageMask = 0x6000

	// coordMask covers the coordinate bits of a U value.
	coordMask = 0x1FFF
)

// Bit layout of the packed PlotLocator value.
const (
	plotIndexShift = 48
	pageIndexShift = 56
	generationMask = maxGeneration - 1
	indexMask      = 0xFF
)

// PlotLocator identifies a plot's content epoch, analogous to a directory
// path: page/plot/generation. It packs into a single uint64 (generation in
// bits 0-47, plot index in bits 48-55, page index in bits 56-63) so it can
// travel inside vertex data and cache keys.
//
// The zero value is the invalid locator. Any constructed locator carries a
// non-zero generation and is therefore valid. PlotLocator is an immutable
// value type; compare with ==.
type PlotLocator struct {
	packed uint64
}

// NewPlotLocator builds a locator for the given page, plot and generation.
// It panics if any field exceeds its bit budget; staying in range is the
// caller's contract.
func NewPlotLocator(pageIndex, plotIndex uint32, generation uint64) PlotLocator {
	if pageIndex >= MaxPages {
		panic(fmt.Sprintf("atlas: page index %d out of range [0,%d)", pageIndex, MaxPages))
	}
	if plotIndex >= MaxPlots {
		panic(fmt.Sprintf("atlas: plot index %d out of range [0,%d)", plotIndex, MaxPlots))
	}
	if generation >= maxGeneration {
		panic(fmt.Sprintf("atlas: generation %d exceeds 48-bit budget", generation))
	}
	return PlotLocator{
		packed: generation |
			uint64(plotIndex)<<plotIndexShift |
			uint64(pageIndex)<<pageIndexShift,
	}
}

// IsValid reports whether the locator identifies anything. Only the zero
// value is invalid.
func (l PlotLocator) IsValid() bool {
	return l.packed != 0
}

// MakeInvalid resets the locator to the zero sentinel.
func (l *PlotLocator) MakeInvalid() {
	l.packed = 0
}

// PageIndex returns the backing texture index.
func (l PlotLocator) PageIndex() uint32 {
	return uint32(l.packed>>pageIndexShift) & indexMask
}

// PlotIndex returns the plot index within the page.
func (l PlotLocator) PlotIndex() uint32 {
	return uint32(l.packed>>plotIndexShift) & indexMask
}

// GenID returns the generation the locator was minted against.
func (l PlotLocator) GenID() uint64 {
	return l.packed & generationMask
}

// Packed returns the raw 64-bit representation. This is the persisted
// layout: generation in the low 48 bits, then plot index, then page index.
func (l PlotLocator) Packed() uint64 {
	return l.packed
}

// AtlasLocator records where a sub-image landed in the atlas. It keeps a
// left-top, right-bottom pair of encoded UV coordinates. Bits 13 and 14 of
// the U values hold the page index, replicated identically in both so that
// width = u1 - u0 stays correct: the page bits subtract to zero. The UVs
// are handed to the GPU as-is.
type AtlasLocator struct {
	plotLocator PlotLocator

	// The placement bounds in the low 13 bits, page index in bits 13
	// and 14 of the Us.
	uvs [4]uint16
}

// UVs returns the encoded [u0, v0, u1, v1] coordinates.
func (a *AtlasLocator) UVs() [4]uint16 {
	return a.uvs
}

// PlotLocator returns the plot identity this placement was minted against.
func (a *AtlasLocator) PlotLocator() PlotLocator {
	return a.plotLocator
}

// InvalidatePlotLocator clears the held plot locator to the invalid
// sentinel. The rectangle bits are left untouched so the placement can
// still be inspected after being marked stale.
func (a *AtlasLocator) InvalidatePlotLocator() {
	a.plotLocator.MakeInvalid()
}

// PageIndex returns the page the sub-image was placed on.
func (a *AtlasLocator) PageIndex() uint32 {
	return a.plotLocator.PageIndex()
}

// PlotIndex returns the plot the sub-image was placed in.
func (a *AtlasLocator) PlotIndex() uint32 {
	return a.plotLocator.PlotIndex()
}

// GenID returns the plot generation the placement belongs to.
func (a *AtlasLocator) GenID() uint64 {
	return a.plotLocator.GenID()
}

// TopLeft returns the placement position in the backing texture, with the
// page bits masked out of the U coordinate.
func (a *AtlasLocator) TopLeft() image.Point {
	return image.Point{
		X: int(a.uvs[0] & coordMask),
		Y: int(a.uvs[1]),
	}
}

// Width returns the placement width. The page bits carried by both U
// values cancel under subtraction.
func (a *AtlasLocator) Width() uint16 {
	return a.uvs[2] - a.uvs[0]
}

// Height returns the placement height.
func (a *AtlasLocator) Height() uint16 {
	return a.uvs[3] - a.uvs[1]
}

// InsetSrc shrinks all four edges symmetrically by padding pixels,
// yielding the unpadded source bounds. The caller must guarantee
// 2*padding fits in both dimensions; violating that is a contract error.
func (a *AtlasLocator) InsetSrc(padding int) {
	if 2*padding > int(a.Width()) || 2*padding > int(a.Height()) {
		panic(fmt.Sprintf("atlas: inset %d exceeds half of %dx%d placement",
			padding, a.Width(), a.Height()))
	}
	a.uvs[0] += uint16(padding)
	a.uvs[1] += uint16(padding)
	a.uvs[2] -= uint16(padding)
	a.uvs[3] -= uint16(padding)
}

// UpdatePlotLocator stores the plot locator and stamps its page index into
// bits 13 and 14 of both U values, preserving the rectangle in the low 13
// bits.
func (a *AtlasLocator) UpdatePlotLocator(p PlotLocator) {
	a.plotLocator = p
	page := uint16(p.PageIndex()) << 13
	a.uvs[0] = (a.uvs[0] & coordMask) | page
	a.uvs[2] = (a.uvs[2] & coordMask) | page
}

// UpdateRect stores a new placement rectangle, preserving any page bits
// already stamped into the U values. The rectangle must be well formed and
// its horizontal extent must fit in 13 bits.
func (a *AtlasLocator) UpdateRect(rect image.Rectangle) {
	if rect.Min.X < 0 || rect.Min.X > rect.Max.X || rect.Max.X > maxPlotCoord {
		panic(fmt.Sprintf("atlas: horizontal extent [%d,%d] outside [0,%d]",
			rect.Min.X, rect.Max.X, maxPlotCoord))
	}
	if rect.Min.Y < 0 || rect.Min.Y > rect.Max.Y || rect.Max.Y > 0xFFFF {
		panic(fmt.Sprintf("atlas: vertical extent [%d,%d] outside [0,%d]",
			rect.Min.Y, rect.Max.Y, 0xFFFF))
	}
	a.uvs[0] = (a.uvs[0] & pageMask) | uint16(rect.Min.X)
	a.uvs[1] = uint16(rect.Min.Y)
	a.uvs[2] = (a.uvs[2] & pageMask) | uint16(rect.Max.X)
	a.uvs[3] = uint16(rect.Max.Y)
}
