package atlas

import (
	"fmt"
	"image"

	"github.com/gogpu/atlas/rectpack"
)

// Compaction thresholds, counted in flushes.
const (
	// plotRecentlyUsedCount is how many flushes a plot must sit unused
	// before Compact treats it as cold.
	plotRecentlyUsedCount = 32

	// atlasRecentlyUsedCount is how many flushes the whole atlas must
	// sit unused before Compact starts shrinking it aggressively.
	atlasRecentlyUsedCount = 128
)

// page is one backing texture broken into a spatial grid of plots.
type page struct {
	plots []*Plot
	list  *plotList // recency order: head = MRU, tail = LRU
}

// Atlas manages up to four texture pages on behalf of draw code. New
// sub-images are prioritized to the lower index pages; when every active
// page is full, the atlas activates another page, and failing that it
// evicts the least recently used plot whose draws have already flushed.
//
// The atlas provides the eviction mechanism only. Callers drive the
// policy with last-use tokens and Compact, and they perform GPU uploads
// from the dirty-rect and pixel-mirror state via Flush.
//
// Atlas is not safe for concurrent use.
type Atlas struct {
	format        MaskFormat
	bytesPerPixel int
	textureWidth  int
	textureHeight int
	plotWidth     int
	plotHeight    int
	numPlots      int

	gen             *GenerationCounter
	atlasGeneration uint64

	tokens         TokenTracker
	prevFlushToken Token

	// flushes since any plot in the atlas was last used
	flushesSinceLastUse int

	evictions evictionRegistry

	pages    [MaxPages]page
	textures [MaxPages]any
	staging  [MaxPages][]byte

	maxPages       int
	numActivePages int

	newPacker func(w, h int) rectpack.Packer
}

// New creates an atlas with the given geometry. One page is active
// initially; more are activated on demand up to cfg.MaxPages.
func New(cfg Config) (*Atlas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Atlas{
		format:        cfg.Format,
		bytesPerPixel: cfg.Format.BytesPerPixel(),
		textureWidth:  cfg.Width,
		textureHeight: cfg.Height,
		plotWidth:     cfg.PlotWidth,
		plotHeight:    cfg.PlotHeight,
		numPlots:      (cfg.Width / cfg.PlotWidth) * (cfg.Height / cfg.PlotHeight),
		gen:           NewGenerationCounter(),
		maxPages:      cfg.MaxPages,
		newPacker:     cfg.NewPacker,
	}
	a.atlasGeneration = a.gen.Next()

	numPlotsX := cfg.Width / cfg.PlotWidth
	for pageIdx := 0; pageIdx < a.maxPages; pageIdx++ {
		pg := &a.pages[pageIdx]
		pg.plots = make([]*Plot, a.numPlots)
		pg.list = newPlotList()
		for r := 0; r < cfg.Height/cfg.PlotHeight; r++ {
			for c := 0; c < numPlotsX; c++ {
				plotIdx := r*numPlotsX + c
				plot := NewPlot(uint32(pageIdx), uint32(plotIdx), a.gen,
					c*cfg.PlotWidth, r*cfg.PlotHeight,
					cfg.PlotWidth, cfg.PlotHeight, cfg.Format, a.newPacker)
				pg.plots[plotIdx] = plot
				pg.list.PushFront(plot)
			}
		}
	}

	a.numActivePages = 1
	return a, nil
}

// Format returns the mask format of stored sub-images.
func (a *Atlas) Format() MaskFormat { return a.format }

// PageSize returns the dimensions of each backing texture.
func (a *Atlas) PageSize() image.Point {
	return image.Point{X: a.textureWidth, Y: a.textureHeight}
}

// PlotSize returns the dimensions of each plot.
func (a *Atlas) PlotSize() image.Point {
	return image.Point{X: a.plotWidth, Y: a.plotHeight}
}

// NumActivePages returns how many pages currently accept sub-images.
func (a *Atlas) NumActivePages() int { return a.numActivePages }

// NumPlots returns the number of plots per page.
func (a *Atlas) NumPlots() int { return a.numPlots }

// AtlasGeneration identifies the current page configuration. It advances
// whenever a page is activated or deactivated, signaling callers to
// refresh any per-page cached state.
func (a *Atlas) AtlasGeneration() uint64 { return a.atlasGeneration }

// Tokens returns the atlas's token tracker. Callers issue a token per
// draw that samples the atlas and stamp it with SetLastUseToken.
func (a *Atlas) Tokens() *TokenTracker { return &a.tokens }

// PlotAt returns the live plot at the given grid position. It panics on
// out-of-range indices.
func (a *Atlas) PlotAt(pageIndex, plotIndex uint32) *Plot {
	if int(pageIndex) >= a.maxPages || int(plotIndex) >= a.numPlots {
		panic(fmt.Sprintf("atlas: no plot at page %d, plot %d", pageIndex, plotIndex))
	}
	return a.pages[pageIndex].plots[plotIndex]
}

// AddToAtlas places a width x height sub-image on the first page with
// room. On success the returned locator carries the placement and page
// identity; until the next Flush the pixels exist only in the CPU mirror.
//
// ErrTryAgain means nothing fits now but a plot becomes evictable once
// in-flight draws flush: end the current draw and retry. ErrAtlasFull
// means the sub-image can never fit. ErrPixelMismatch means pixels is too
// short for the requested size.
func (a *Atlas) AddToAtlas(width, height int, pixels []byte) (AtlasLocator, error) {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("atlas: degenerate sub-image %dx%d", width, height))
	}
	if len(pixels) < width*height*a.bytesPerPixel {
		return AtlasLocator{}, ErrPixelMismatch
	}
	if width > a.plotWidth || height > a.plotHeight {
		return AtlasLocator{}, ErrAtlasFull
	}

	// Try the active pages front to back; lower pages stay hot so
	// higher ones can drain and deactivate.
	for pageIdx := 0; pageIdx < a.numActivePages; pageIdx++ {
		if loc, ok := a.addToPage(pageIdx, width, height, pixels); ok {
			return loc, nil
		}
	}

	if a.numActivePages < a.maxPages {
		a.activateNewPage()
		loc, ok := a.addToPage(a.numActivePages-1, width, height, pixels)
		if !ok {
			// A freshly activated page has only empty plots at
			// least as large as the sub-image.
			panic("atlas: insert failed on empty page")
		}
		return loc, nil
	}

	// All pages are full. Evict the least recently used plot whose
	// draws have flushed through, lower pages first.
	for pageIdx := 0; pageIdx < a.numActivePages; pageIdx++ {
		plot := a.pages[pageIdx].list.Tail()
		if plot == nil || !a.tokens.HasFlushed(plot.LastUseToken()) {
			continue
		}
		a.evictAndReset(plot)
		loc, ok := plot.AddSubImage(width, height, pixels)
		if !ok {
			panic("atlas: insert failed on evicted plot")
		}
		a.pages[pageIdx].list.MoveToFront(plot)
		return loc, nil
	}

	return AtlasLocator{}, ErrTryAgain
}

// addToPage tries every plot of one page in recency order.
func (a *Atlas) addToPage(pageIdx, width, height int, pixels []byte) (AtlasLocator, bool) {
	var loc AtlasLocator
	ok := false
	a.pages[pageIdx].list.Each(func(p *Plot) bool {
		if l, placed := p.AddSubImage(width, height, pixels); placed {
			loc = l
			ok = true
			a.pages[pageIdx].list.MoveToFront(p)
			return false
		}
		return true
	})
	return loc, ok
}

// HasLocator reports whether the sub-image identified by the locator is
// still present: the plot's live generation must equal the locator's.
// This is the sole staleness test; no scan is required.
func (a *Atlas) HasLocator(loc PlotLocator) bool {
	if !loc.IsValid() {
		return false
	}
	pageIdx := loc.PageIndex()
	plotIdx := loc.PlotIndex()
	if int(pageIdx) >= a.numActivePages || int(plotIdx) >= a.numPlots {
		return false
	}
	return a.pages[pageIdx].plots[plotIdx].GenID() == loc.GenID()
}

// SetLastUseToken records that a draw with the given token samples the
// placement. The locator must still be live; stamping a stale locator is
// a contract violation.
func (a *Atlas) SetLastUseToken(loc AtlasLocator, t Token) {
	if !a.HasLocator(loc.PlotLocator()) {
		panic("atlas: SetLastUseToken on stale locator")
	}
	plot := a.pages[loc.PageIndex()].plots[loc.PlotIndex()]
	a.markUsed(plot, t)
}

// SetLastUseTokenBulk stamps every plot recorded in the updater. Plots
// whose page was deactivated since they were recorded are skipped.
func (a *Atlas) SetLastUseTokenBulk(b *BulkUseUpdater, t Token) {
	for _, pu := range b.plots {
		if int(pu.pageIndex) >= a.numActivePages {
			continue
		}
		a.markUsed(a.pages[pu.pageIndex].plots[pu.plotIndex], t)
	}
}

func (a *Atlas) markUsed(plot *Plot, t Token) {
	a.pages[plot.PageIndex()].list.MoveToFront(plot)
	plot.SetLastUseToken(t)
	plot.resetFlushesSinceLastUsed()
	a.flushesSinceLastUse = 0
}

// RegisterEvictionCallback adds a listener notified with the pre-reset
// PlotLocator of every evicted plot. The returned handle unregisters it.
func (a *Atlas) RegisterEvictionCallback(cb PlotEvictionCallback) int {
	return a.evictions.register(cb)
}

// UnregisterEvictionCallback removes a previously registered listener.
func (a *Atlas) UnregisterEvictionCallback(handle int) {
	a.evictions.unregister(handle)
}

// Evict invalidates the plot identified by the locator: listeners are
// notified with the current locator, then the plot resets to a fresh
// generation. It returns false if the locator is already stale.
func (a *Atlas) Evict(loc PlotLocator) bool {
	if !a.HasLocator(loc) {
		return false
	}
	a.evictAndReset(a.pages[loc.PageIndex()].plots[loc.PlotIndex()])
	return true
}

// evictAndReset notifies listeners with the pre-reset locator, then
// advances the plot's generation. Listener failures never abort the
// reset; failing to advance the generation would leave stale locators
// indistinguishable from valid ones.
func (a *Atlas) evictAndReset(plot *Plot) {
	a.evictions.notify(plot.PlotLocator())
	plot.ResetRects()
	Logger().Debug("atlas: evicted plot",
		"page", plot.PageIndex(), "plot", plot.PlotIndex(), "generation", plot.GenID())
}

// Compact frees space after a flush: plots that sat unused for
// plotRecentlyUsedCount flushes on the last page are evicted, and the
// page deactivates once all its plots are cold. Call it once per flush,
// after Flush.
func (a *Atlas) Compact() {
	defer func() {
		a.prevFlushToken = a.tokens.Current()
	}()
	if a.numActivePages == 0 {
		return
	}

	usedThisFlush := false
	for pageIdx := 0; pageIdx < a.numActivePages; pageIdx++ {
		for _, plot := range a.pages[pageIdx].plots {
			if plot.LastUseToken() > a.prevFlushToken {
				usedThisFlush = true
			} else if a.tokens.HasFlushed(plot.LastUseToken()) {
				plot.incFlushesSinceLastUsed()
			}
		}
	}
	if usedThisFlush {
		a.flushesSinceLastUse = 0
	} else {
		a.flushesSinceLastUse++
	}

	// Shrink from the highest page: either its plots individually went
	// cold, or the whole atlas has been idle for a long time.
	lastIdx := a.numActivePages - 1
	cold := true
	for _, plot := range a.pages[lastIdx].plots {
		if !a.tokens.HasFlushed(plot.LastUseToken()) {
			cold = false
			break
		}
		if plot.FlushesSinceLastUsed() <= plotRecentlyUsedCount &&
			a.flushesSinceLastUse <= atlasRecentlyUsedCount {
			cold = false
			break
		}
	}
	if !cold {
		return
	}
	for _, plot := range a.pages[lastIdx].plots {
		a.evictAndReset(plot)
	}
	a.deactivateLastPage()
}

// activateNewPage brings the next page online.
func (a *Atlas) activateNewPage() {
	a.numActivePages++
	a.atlasGeneration = a.gen.Next()
	Logger().Debug("atlas: activated page",
		"page", a.numActivePages-1, "atlasGeneration", a.atlasGeneration)
}

// deactivateLastPage takes the highest active page offline and releases
// its GPU texture. The page's plots were already evicted.
func (a *Atlas) deactivateLastPage() {
	a.numActivePages--
	idx := a.numActivePages
	if d, ok := a.textures[idx].(textureDestroyer); ok {
		d.Destroy()
	}
	a.textures[idx] = nil
	a.staging[idx] = nil
	a.atlasGeneration = a.gen.Next()
	Logger().Debug("atlas: deactivated page",
		"page", idx, "atlasGeneration", a.atlasGeneration)
}
