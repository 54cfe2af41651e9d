package atlas

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/gogpu/atlas/rectpack"
)

// maxAtlasDim caps page dimensions. On some systems texture coordinates
// are represented using half-precision floating point, which limits safe
// atlas dimensions to 2048x2048.
const maxAtlasDim = 2048

// Config describes the geometry of an atlas.
type Config struct {
	// Width and Height are the page (backing texture) dimensions in
	// pixels. Both must be powers of two, at most 2048.
	Width  int
	Height int

	// PlotWidth and PlotHeight are the plot dimensions. They must
	// divide the page dimensions evenly, and the resulting grid may
	// hold at most 32 plots.
	PlotWidth  int
	PlotHeight int

	// Format is the pixel layout of stored sub-images.
	Format MaskFormat

	// MaxPages limits how many pages the atlas may activate, 1 to 4.
	MaxPages int

	// NewPacker builds the rectangle packer for each plot. nil selects
	// the skyline packer.
	NewPacker func(w, h int) rectpack.Packer
}

// DefaultConfig returns a single-format configuration suitable for glyph
// masks: 1024x1024 pages of sixteen 256x256 plots, up to four pages.
func DefaultConfig() Config {
	return Config{
		Width:      1024,
		Height:     1024,
		PlotWidth:  256,
		PlotHeight: 256,
		Format:     MaskFormatA8,
		MaxPages:   MaxPages,
	}
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}

// Validate checks the configuration against the packed-locator limits.
func (c *Config) Validate() error {
	if c.Width < 1 || c.Width&(c.Width-1) != 0 {
		return &ConfigError{Field: "Width", Reason: "must be a positive power of 2"}
	}
	if c.Height < 1 || c.Height&(c.Height-1) != 0 {
		return &ConfigError{Field: "Height", Reason: "must be a positive power of 2"}
	}
	if c.Width > maxAtlasDim {
		return &ConfigError{Field: "Width", Reason: fmt.Sprintf("must be at most %d", maxAtlasDim)}
	}
	if c.Height > maxAtlasDim {
		return &ConfigError{Field: "Height", Reason: fmt.Sprintf("must be at most %d", maxAtlasDim)}
	}
	if c.PlotWidth < 1 || c.Width%c.PlotWidth != 0 {
		return &ConfigError{Field: "PlotWidth", Reason: "must divide Width evenly"}
	}
	if c.PlotHeight < 1 || c.Height%c.PlotHeight != 0 {
		return &ConfigError{Field: "PlotHeight", Reason: "must divide Height evenly"}
	}
	if plots := (c.Width / c.PlotWidth) * (c.Height / c.PlotHeight); plots > MaxPlots {
		return &ConfigError{Field: "PlotWidth", Reason: fmt.Sprintf("grid of %d plots exceeds %d per page", plots, MaxPlots)}
	}
	if !c.Format.Valid() {
		return &ConfigError{Field: "Format", Reason: "unknown mask format"}
	}
	if c.MaxPages < 1 || c.MaxPages > MaxPages {
		return &ConfigError{Field: "MaxPages", Reason: fmt.Sprintf("must be 1 to %d", MaxPages)}
	}
	return nil
}

// SizePolicy derives atlas and plot dimensions per mask format from the
// GPU's texture size limit and a per-texture byte budget. The three mask
// formats are kept in relation with one another: ARGB takes the most
// space, so its dimensions are sized from the byte budget, and A8 pages
// are twice the ARGB dimensions.
type SizePolicy struct {
	argb           image.Point
	maxTextureSize int
}

// argbDimensions ladders the ARGB page size by the number of 256KB tiles
// the byte budget allows.
var argbDimensions = []image.Point{
	{X: 256, Y: 256},
	{X: 512, Y: 256},
	{X: 512, Y: 512},
	{X: 1024, Y: 512},
	{X: 1024, Y: 1024},
	{X: 2048, Y: 1024},
	{X: 2048, Y: 2048},
}

// NewSizePolicy picks page dimensions for a GPU whose largest texture is
// maxTextureSize pixels per side, aiming at roughly maxBytes per ARGB
// page. maxBytes of 0 selects the minimum sizes.
func NewSizePolicy(maxTextureSize int, maxBytes int) SizePolicy {
	// Number of 256x256 ARGB tiles (256KB each) the budget allows.
	tiles := maxBytes >> 18
	index := 0
	if tiles > 0 {
		index = bits.Len(uint(tiles)) - 1
	}
	if index >= len(argbDimensions) {
		index = len(argbDimensions) - 1
	}
	dims := argbDimensions[index]
	return SizePolicy{
		argb: image.Point{
			X: min(dims.X, maxTextureSize),
			Y: min(dims.Y, maxTextureSize),
		},
		maxTextureSize: min(maxTextureSize, maxAtlasDim),
	}
}

// AtlasDimensions returns the page size for the given mask format.
func (p SizePolicy) AtlasDimensions(f MaskFormat) image.Point {
	if f == MaskFormatA8 {
		// A8 pages hold four times the pixels of ARGB ones for the
		// same byte budget.
		return image.Point{
			X: min(2*p.argb.X, p.maxTextureSize),
			Y: min(2*p.argb.Y, p.maxTextureSize),
		}
	}
	return p.argb
}

// PlotDimensions returns the plot size for the given mask format.
func (p SizePolicy) PlotDimensions(f MaskFormat) image.Point {
	if f == MaskFormatA8 {
		dims := p.AtlasDimensions(f)
		plotWidth := 256
		if dims.X >= 2048 {
			plotWidth = 512
		}
		return image.Point{X: plotWidth, Y: 256}
	}
	return image.Point{X: 256, Y: 256}
}

// ConfigFor builds a ready-to-validate Config for the given mask format.
func (p SizePolicy) ConfigFor(f MaskFormat) Config {
	dims := p.AtlasDimensions(f)
	plot := p.PlotDimensions(f)
	// A page always contains at least one plot.
	if plot.X > dims.X {
		plot.X = dims.X
	}
	if plot.Y > dims.Y {
		plot.Y = dims.Y
	}
	return Config{
		Width:      dims.X,
		Height:     dims.Y,
		PlotWidth:  plot.X,
		PlotHeight: plot.Y,
		Format:     f,
		MaxPages:   MaxPages,
	}
}
