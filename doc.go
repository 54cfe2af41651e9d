// Package atlas implements a fixed-capacity, GPU-resident texture cache
// that packs many small rasterized sub-images (glyph masks, path masks)
// into shared textures.
//
// An atlas is divided into up to four pages, one backing texture each.
// Every page is a spatial grid of up to 32 plots; each plot owns a
// skyline rectangle packer, a CPU-side mirror of its pixels and a dirty
// rectangle describing the region needing re-upload. Placement positions
// are handed back as AtlasLocator values: four 16-bit UV words carrying
// the page index in bits 13 and 14 of the U coordinates, plus a packed
// PlotLocator identifying the plot's content generation.
//
// Staleness is detected with generation counters rather than reference
// counting: evicting a plot advances its generation, which implicitly
// invalidates every locator minted against the old one. Comparing a
// stored locator's GenID against the live plot's is the sole staleness
// test; no scan is required. Components that cache locators register a
// PlotEvictionCallback to be told the pre-reset locator at eviction time.
//
// The package supplies the eviction mechanism, not the policy: which plot
// to evict and when is the caller's decision, driven by last-use tokens
// and Compact.
//
// All types assume exclusive single-threaded ownership unless their
// documentation says otherwise. GPU texture upload is bridged through the
// gpucontext interfaces (see Atlas.Flush); rasterization, shading and
// draw submission stay outside this package.
package atlas
