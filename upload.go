package atlas

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// textureDestroyer is the interface for releasing page textures. This
// matches the gogpu Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// PageTextureFormat is the GPU format of the textures Flush produces.
// Every mask format is staged through RGBA so one shader samples all
// three; A8 coverage is replicated into every channel and A565 is
// expanded to 8-bit color.
const PageTextureFormat = gputypes.TextureFormatRGBA8Unorm

// Texture returns the GPU texture backing the given page, or nil if the
// page has not been flushed yet. The concrete type is whatever the
// texture creator passed to Flush returned.
func (a *Atlas) Texture(pageIndex int) any {
	if pageIndex < 0 || pageIndex >= a.maxPages {
		return nil
	}
	return a.textures[pageIndex]
}

// Flush pushes every dirty plot's CPU mirror to the GPU and advances the
// flush frontier, making all previously issued draw tokens count as
// flushed. Page textures are created lazily through creator and updated
// in place afterward; the creator should come from the host application,
// e.g. gogpu's Context.AsTextureDrawer().TextureCreator().
//
// Call Flush after submitting the draws of a frame, then Compact.
func (a *Atlas) Flush(creator gpucontext.TextureCreator) error {
	if creator == nil {
		return ErrNilTextureCreator
	}

	for pageIdx := 0; pageIdx < a.numActivePages; pageIdx++ {
		dirty := false
		for _, plot := range a.pages[pageIdx].plots {
			if plot.IsDirty() {
				dirty = true
				break
			}
		}
		if !dirty && a.textures[pageIdx] != nil {
			continue
		}

		staging := a.pageStaging(pageIdx)
		for _, plot := range a.pages[pageIdx].plots {
			a.stagePlot(staging, plot)
		}

		if a.textures[pageIdx] == nil {
			tex, err := creator.NewTextureFromRGBA(a.textureWidth, a.textureHeight, staging)
			if err != nil {
				return fmt.Errorf("atlas: creating page %d texture: %w", pageIdx, err)
			}
			a.textures[pageIdx] = tex
		} else {
			updater, ok := a.textures[pageIdx].(gpucontext.TextureUpdater)
			if !ok {
				return ErrTextureNotUpdatable
			}
			if err := updater.UpdateData(staging); err != nil {
				return fmt.Errorf("atlas: updating page %d texture: %w", pageIdx, err)
			}
		}

		uploadToken := a.tokens.Current()
		for _, plot := range a.pages[pageIdx].plots {
			if plot.IsDirty() {
				plot.SetLastUploadToken(uploadToken)
				plot.MarkClean()
			}
		}
	}

	a.tokens.FlushComplete()
	return nil
}

// pageStaging returns the persistent RGBA staging buffer for a page,
// allocating it on first use.
func (a *Atlas) pageStaging(pageIdx int) []byte {
	if a.staging[pageIdx] == nil {
		a.staging[pageIdx] = make([]byte, a.textureWidth*a.textureHeight*4)
	}
	return a.staging[pageIdx]
}

// stagePlot copies the plot's dirty region into the page staging buffer,
// expanding the mask format to RGBA.
func (a *Atlas) stagePlot(staging []byte, p *Plot) {
	r := p.DirtyRect()
	src := p.Pixels()
	if r.Empty() || src == nil {
		return
	}

	off := p.Offset()
	srcStride := p.RowBytes()
	dstStride := a.textureWidth * 4

	switch a.format {
	case MaskFormatA8:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			si := y*srcStride + r.Min.X
			di := (off.Y+y)*dstStride + (off.X+r.Min.X)*4
			for x := r.Min.X; x < r.Max.X; x++ {
				v := src[si]
				staging[di+0] = v
				staging[di+1] = v
				staging[di+2] = v
				staging[di+3] = v
				si++
				di += 4
			}
		}
	case MaskFormatA565:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			si := y*srcStride + r.Min.X*2
			di := (off.Y+y)*dstStride + (off.X+r.Min.X)*4
			for x := r.Min.X; x < r.Max.X; x++ {
				v := uint16(src[si]) | uint16(src[si+1])<<8
				red := uint8(v >> 11)
				green := uint8(v >> 5 & 0x3F)
				blue := uint8(v & 0x1F)
				staging[di+0] = red<<3 | red>>2
				staging[di+1] = green<<2 | green>>4
				staging[di+2] = blue<<3 | blue>>2
				staging[di+3] = 0xFF
				si += 2
				di += 4
			}
		}
	case MaskFormatARGB:
		rowBytes := (r.Max.X - r.Min.X) * 4
		for y := r.Min.Y; y < r.Max.Y; y++ {
			si := y*srcStride + r.Min.X*4
			di := (off.Y+y)*dstStride + (off.X+r.Min.X)*4
			copy(staging[di:di+rowBytes], src[si:si+rowBytes])
		}
	}
}
