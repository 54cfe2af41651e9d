package atlas

// Token orders uploads and draws relative to flush boundaries. Tokens are
// issued in strictly increasing order; a plot whose last-use token has
// flushed through the GPU can be evicted without corrupting in-flight
// draws.
type Token uint64

// InvalidToken is the zero sentinel. It compares as already flushed, so a
// never-used plot is always evictable.
const InvalidToken Token = 0

// TokenTracker issues draw tokens and tracks which of them have flushed.
// The atlas owns one; callers obtain it via Atlas.Tokens, stamp a fresh
// token on every draw that samples the atlas, and the flush frontier
// advances when Atlas.Flush runs.
//
// TokenTracker is not safe for concurrent use.
type TokenTracker struct {
	current Token // most recently issued
	flushed Token // every token <= flushed has executed on the GPU
}

// Next issues a fresh token, strictly greater than all previous ones.
func (t *TokenTracker) Next() Token {
	t.current++
	return t.current
}

// Current returns the most recently issued token, or InvalidToken if none
// was issued yet.
func (t *TokenTracker) Current() Token {
	return t.current
}

// FlushComplete marks every issued token as flushed.
func (t *TokenTracker) FlushComplete() {
	t.flushed = t.current
}

// HasFlushed reports whether tok has executed on the GPU.
func (t *TokenTracker) HasFlushed(tok Token) bool {
	return tok <= t.flushed
}

// BulkUseUpdater collects (page, plot) pairs referenced by a batch of
// placements so their last-use tokens can be updated in one call to
// Atlas.SetLastUseTokenBulk. Duplicates are filtered with a per-page
// bitmask, which is also what caps MaxPlots at 32.
type BulkUseUpdater struct {
	plots   []plotUse
	updated [MaxPages]uint32
}

type plotUse struct {
	pageIndex uint32
	plotIndex uint32
}

// Add records the plot referenced by the locator. It returns false if the
// plot was already recorded.
func (b *BulkUseUpdater) Add(loc AtlasLocator) bool {
	page := loc.PageIndex()
	plot := loc.PlotIndex()
	if b.updated[page]&(1<<plot) != 0 {
		return false
	}
	b.updated[page] |= 1 << plot
	b.plots = append(b.plots, plotUse{pageIndex: page, plotIndex: plot})
	return true
}

// Reset forgets all recorded plots.
func (b *BulkUseUpdater) Reset() {
	b.plots = b.plots[:0]
	b.updated = [MaxPages]uint32{}
}
