package atlas

import (
	"errors"
	"image"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"width not power of two", func(c *Config) { c.Width = 300 }, "Width"},
		{"width zero", func(c *Config) { c.Width = 0 }, "Width"},
		{"width too large", func(c *Config) { c.Width = 4096 }, "Width"},
		{"height not power of two", func(c *Config) { c.Height = 768 }, "Height"},
		{"height too large", func(c *Config) { c.Height = 4096 }, "Height"},
		{"plot width uneven", func(c *Config) { c.PlotWidth = 300 }, "PlotWidth"},
		{"plot width zero", func(c *Config) { c.PlotWidth = 0 }, "PlotWidth"},
		{"plot height uneven", func(c *Config) { c.PlotHeight = 300 }, "PlotHeight"},
		{"too many plots", func(c *Config) { c.PlotWidth = 64; c.PlotHeight = 64 }, "PlotWidth"},
		{"bad format", func(c *Config) { c.Format = MaskFormat(17) }, "Format"},
		{"zero pages", func(c *Config) { c.MaxPages = 0 }, "MaxPages"},
		{"too many pages", func(c *Config) { c.MaxPages = 5 }, "MaxPages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Validate() flagged %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestSizePolicyDimensions(t *testing.T) {
	tests := []struct {
		name           string
		maxTextureSize int
		maxBytes       int
		wantARGB       image.Point
		wantA8         image.Point
	}{
		{"no budget", 2048, 0, image.Point{256, 256}, image.Point{512, 512}},
		{"one tile", 2048, 256 * 1024, image.Point{256, 256}, image.Point{512, 512}},
		{"two tiles", 2048, 512 * 1024, image.Point{512, 256}, image.Point{1024, 512}},
		{"four tiles", 2048, 1 << 20, image.Point{512, 512}, image.Point{1024, 1024}},
		{"sixteen tiles", 2048, 4 << 20, image.Point{1024, 1024}, image.Point{2048, 2048}},
		{"huge budget clamps", 2048, 1 << 30, image.Point{2048, 2048}, image.Point{2048, 2048}},
		{"small gpu clamps", 512, 4 << 20, image.Point{512, 512}, image.Point{512, 512}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSizePolicy(tt.maxTextureSize, tt.maxBytes)
			if got := p.AtlasDimensions(MaskFormatARGB); got != tt.wantARGB {
				t.Errorf("AtlasDimensions(ARGB) = %v, want %v", got, tt.wantARGB)
			}
			if got := p.AtlasDimensions(MaskFormatA8); got != tt.wantA8 {
				t.Errorf("AtlasDimensions(A8) = %v, want %v", got, tt.wantA8)
			}
		})
	}
}

func TestSizePolicyPlotDimensions(t *testing.T) {
	small := NewSizePolicy(2048, 0)
	if got := small.PlotDimensions(MaskFormatA8); got != (image.Point{256, 256}) {
		t.Errorf("small A8 plots = %v, want 256x256", got)
	}

	large := NewSizePolicy(2048, 4<<20)
	if got := large.PlotDimensions(MaskFormatA8); got != (image.Point{512, 256}) {
		t.Errorf("large A8 plots = %v, want 512x256", got)
	}
	if got := large.PlotDimensions(MaskFormatARGB); got != (image.Point{256, 256}) {
		t.Errorf("ARGB plots = %v, want 256x256", got)
	}
}

func TestSizePolicyConfigFor(t *testing.T) {
	for _, f := range []MaskFormat{MaskFormatA8, MaskFormatA565, MaskFormatARGB} {
		for _, maxBytes := range []int{0, 256 * 1024, 1 << 20, 1 << 30} {
			cfg := NewSizePolicy(2048, maxBytes).ConfigFor(f)
			if err := cfg.Validate(); err != nil {
				t.Errorf("ConfigFor(%v) with %d bytes invalid: %v", f, maxBytes, err)
			}
		}
	}

	// A tiny GPU still produces at least one plot per page.
	cfg := NewSizePolicy(128, 0).ConfigFor(MaskFormatA8)
	if err := cfg.Validate(); err != nil {
		t.Errorf("ConfigFor on a 128px GPU invalid: %v", err)
	}
	if cfg.PlotWidth > cfg.Width || cfg.PlotHeight > cfg.Height {
		t.Errorf("plot %dx%d exceeds page %dx%d", cfg.PlotWidth, cfg.PlotHeight, cfg.Width, cfg.Height)
	}
}
