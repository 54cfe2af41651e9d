package atlas

import (
	"fmt"
	"image"

	"github.com/gogpu/atlas/rectpack"
)

// Plot is one fixed-size cache region of a backing texture. It bridges
// rectangle packing, CPU pixel storage and cache identity: sub-images are
// packed by the owned rectangle packer, their pixels land in a CPU mirror
// of the texture region, and every successful placement is stamped with
// the plot's current PlotLocator.
//
// A plot's identity, its (page, plot index) pair, never changes. Only the
// generation does, on eviction-reset, which is precisely what lets a
// generation mismatch serve as a cheap staleness check for any
// AtlasLocator minted before the reset.
//
// Plot is not safe for concurrent use.
type Plot struct {
	pageIndex uint32
	plotIndex uint32

	genCounter  *GenerationCounter
	genID       uint64
	plotLocator PlotLocator

	// data mirrors the plot's region of the backing texture. Allocated
	// on first insert; plots that never receive a sub-image stay cheap.
	data []byte

	width  int
	height int
	offset image.Point // position of the plot in the backing texture

	format        MaskFormat
	bytesPerPixel int

	// dirtyRect accumulates the region needing re-upload, in plot-local
	// coordinates. Unions across inserts until MarkClean.
	dirtyRect image.Rectangle

	packer rectpack.Packer

	// Flush bookkeeping used by the eviction policy upstream. A plot
	// whose last use has flushed through can be evicted safely.
	lastUpload          Token
	lastUse             Token
	flushesSinceLastUse int
}

// NewPlot creates a plot at the given grid position. offX and offY locate
// the plot inside the backing texture; width and height are the plot's
// own dimensions. newPacker may be nil, in which case the skyline packer
// is used.
func NewPlot(pageIndex, plotIndex uint32, gen *GenerationCounter,
	offX, offY, width, height int, format MaskFormat,
	newPacker func(w, h int) rectpack.Packer) *Plot {

	if gen == nil {
		panic("atlas: nil generation counter")
	}
	if !format.Valid() {
		panic(fmt.Sprintf("atlas: invalid mask format %d", int(format)))
	}
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("atlas: invalid plot size %dx%d", width, height))
	}
	if newPacker == nil {
		newPacker = rectpack.New
	}

	genID := gen.Next()
	return &Plot{
		pageIndex:     pageIndex,
		plotIndex:     plotIndex,
		genCounter:    gen,
		genID:         genID,
		plotLocator:   NewPlotLocator(pageIndex, plotIndex, genID),
		width:         width,
		height:        height,
		offset:        image.Point{X: offX, Y: offY},
		format:        format,
		bytesPerPixel: format.BytesPerPixel(),
		packer:        newPacker(width, height),
	}
}

// PageIndex returns the index of the page owning this plot.
func (p *Plot) PageIndex() uint32 { return p.pageIndex }

// PlotIndex returns the plot's position in the owning page. Together with
// the page index it is the plot's permanent identity.
func (p *Plot) PlotIndex() uint32 { return p.plotIndex }

// GenID returns the current content generation. It advances when the plot
// is evicted, so comparing against a stored locator's GenID tells whether
// that sub-image is still present.
func (p *Plot) GenID() uint64 { return p.genID }

// PlotLocator returns the locator for the plot's current generation.
func (p *Plot) PlotLocator() PlotLocator { return p.plotLocator }

// Width returns the plot width in pixels.
func (p *Plot) Width() int { return p.width }

// Height returns the plot height in pixels.
func (p *Plot) Height() int { return p.height }

// Offset returns the plot's position inside the backing texture.
func (p *Plot) Offset() image.Point { return p.offset }

// Format returns the mask format of the stored pixels.
func (p *Plot) Format() MaskFormat { return p.format }

// BytesPerPixel returns the storage size of one pixel.
func (p *Plot) BytesPerPixel() int { return p.bytesPerPixel }

// RowBytes returns the stride of the CPU mirror.
func (p *Plot) RowBytes() int { return p.width * p.bytesPerPixel }

// Pixels returns the CPU mirror of the plot's texture region, or nil if
// nothing was ever inserted. The slice is owned by the plot; callers must
// treat it as read-only.
func (p *Plot) Pixels() []byte { return p.data }

// DirtyRect returns the plot-local region modified since the last
// MarkClean, or the zero rectangle if the plot is clean.
func (p *Plot) DirtyRect() image.Rectangle { return p.dirtyRect }

// IsDirty reports whether the plot has pixels awaiting upload.
func (p *Plot) IsDirty() bool { return !p.dirtyRect.Empty() }

// MarkClean clears the dirty rectangle. The upload bridge calls this
// after pushing the mirror to the GPU.
func (p *Plot) MarkClean() { p.dirtyRect = image.Rectangle{} }

// AddSubImage places a width x height sub-image in the plot. On success
// it copies pixels into the CPU mirror, extends the dirty rectangle and
// returns a locator stamped with the plot's current PlotLocator and the
// placement rectangle in backing-texture coordinates.
//
// A false return means the plot is full; no state changes, and the caller
// may trigger eviction elsewhere. pixels must hold at least
// width*height*BytesPerPixel() tightly packed bytes; degenerate sizes and
// short pixel slices are contract violations.
func (p *Plot) AddSubImage(width, height int, pixels []byte) (AtlasLocator, bool) {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("atlas: degenerate sub-image %dx%d", width, height))
	}
	if need := width * height * p.bytesPerPixel; len(pixels) < need {
		panic(fmt.Sprintf("atlas: %d pixel bytes for %dx%d sub-image, need %d",
			len(pixels), width, height, need))
	}
	if width > p.width || height > p.height {
		return AtlasLocator{}, false
	}

	x, y, ok := p.packer.Insert(width, height)
	if !ok {
		return AtlasLocator{}, false
	}

	if p.data == nil {
		p.data = make([]byte, p.width*p.height*p.bytesPerPixel)
	}
	srcRow := width * p.bytesPerPixel
	dstRow := p.RowBytes()
	dst := p.data[y*dstRow+x*p.bytesPerPixel:]
	for r := 0; r < height; r++ {
		copy(dst[r*dstRow:r*dstRow+srcRow], pixels[r*srcRow:(r+1)*srcRow])
	}

	placed := image.Rect(x, y, x+width, y+height)
	p.dirtyRect = p.dirtyRect.Union(placed)

	var loc AtlasLocator
	loc.UpdateRect(placed.Add(p.offset))
	loc.UpdatePlotLocator(p.plotLocator)
	return loc, true
}

// ResetRects is the eviction primitive: it advances the plot to a fresh
// generation, recomputes the current locator, resets the packer and
// clears the mirror and dirty rectangle. Identity is untouched. Every
// AtlasLocator holding the old generation is permanently stale afterward.
//
// Callers must notify eviction listeners with the pre-reset locator
// before calling this; Atlas does so automatically.
func (p *Plot) ResetRects() {
	p.genID = p.genCounter.Next()
	p.plotLocator = NewPlotLocator(p.pageIndex, p.plotIndex, p.genID)
	p.packer.Reset()
	p.dirtyRect = image.Rectangle{}
	if p.data != nil {
		clear(p.data)
	}
}

// LastUploadToken returns the token of the most recent upload touching
// this plot.
func (p *Plot) LastUploadToken() Token { return p.lastUpload }

// LastUseToken returns the token of the most recent draw reading from
// this plot.
func (p *Plot) LastUseToken() Token { return p.lastUse }

// SetLastUploadToken records an upload touching this plot.
func (p *Plot) SetLastUploadToken(t Token) { p.lastUpload = t }

// SetLastUseToken records a draw reading from this plot. Callers must set
// it for every draw that samples the plot, or the atlas may evict pixels
// still referenced by in-flight work.
func (p *Plot) SetLastUseToken(t Token) { p.lastUse = t }

// FlushesSinceLastUsed returns how many flushes completed since the plot
// was last read. Compact uses it to find cold plots.
func (p *Plot) FlushesSinceLastUsed() int { return p.flushesSinceLastUse }

func (p *Plot) resetFlushesSinceLastUsed() { p.flushesSinceLastUse = 0 }
func (p *Plot) incFlushesSinceLastUsed()   { p.flushesSinceLastUse++ }
