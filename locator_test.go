package atlas

import (
	"image"
	"testing"
)

func TestGenerationCounter(t *testing.T) {
	c := NewGenerationCounter()

	prev := uint64(0)
	for i := 0; i < 100; i++ {
		g := c.Next()
		if g <= prev {
			t.Fatalf("Next() = %d after %d, want strictly increasing", g, prev)
		}
		if g == InvalidGeneration {
			t.Fatal("Next() returned the invalid generation")
		}
		prev = g
	}
	if first := NewGenerationCounter().Next(); first != 1 {
		t.Errorf("first Next() = %d, want 1", first)
	}
}

func TestPlotLocatorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		page uint32
		plot uint32
		gen  uint64
	}{
		{name: "minimal", page: 0, plot: 0, gen: 1},
		{name: "max page", page: 3, plot: 0, gen: 1},
		{name: "max plot", page: 0, plot: 31, gen: 1},
		{name: "max generation", page: 3, plot: 31, gen: 1<<48 - 1},
		{name: "mixed", page: 2, plot: 17, gen: 0xABCDEF012345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := NewPlotLocator(tt.page, tt.plot, tt.gen)
			if got := loc.PageIndex(); got != tt.page {
				t.Errorf("PageIndex() = %d, want %d", got, tt.page)
			}
			if got := loc.PlotIndex(); got != tt.plot {
				t.Errorf("PlotIndex() = %d, want %d", got, tt.plot)
			}
			if got := loc.GenID(); got != tt.gen {
				t.Errorf("GenID() = %d, want %d", got, tt.gen)
			}
			if !loc.IsValid() {
				t.Error("IsValid() = false for constructed locator")
			}
		})
	}
}

func TestPlotLocatorInvalid(t *testing.T) {
	var zero PlotLocator
	if zero.IsValid() {
		t.Error("zero locator reports valid")
	}

	loc := NewPlotLocator(1, 2, 3)
	if !loc.IsValid() {
		t.Fatal("constructed locator reports invalid")
	}
	loc.MakeInvalid()
	if loc.IsValid() {
		t.Error("locator still valid after MakeInvalid")
	}
	if loc != zero {
		t.Error("invalidated locator differs from zero value")
	}
}

func TestPlotLocatorEquality(t *testing.T) {
	a := NewPlotLocator(1, 5, 42)
	b := NewPlotLocator(1, 5, 42)
	c := NewPlotLocator(1, 5, 43)
	if a != b {
		t.Error("identical locators compare unequal")
	}
	if a == c {
		t.Error("locators with different generations compare equal")
	}
}

func TestPlotLocatorContractViolations(t *testing.T) {
	tests := []struct {
		name string
		page uint32
		plot uint32
		gen  uint64
	}{
		{name: "page too large", page: 4, plot: 0, gen: 1},
		{name: "plot too large", page: 0, plot: 32, gen: 1},
		{name: "generation too large", page: 0, plot: 0, gen: 1 << 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewPlotLocator did not panic")
				}
			}()
			NewPlotLocator(tt.page, tt.plot, tt.gen)
		})
	}
}

func TestAtlasLocatorRect(t *testing.T) {
	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{name: "origin", rect: image.Rect(0, 0, 16, 16)},
		{name: "offset", rect: image.Rect(100, 200, 164, 232)},
		{name: "max coords", rect: image.Rect(8000, 65000, 8191, 65535)},
		{name: "empty at max", rect: image.Rect(8191, 0, 8191, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var loc AtlasLocator
			loc.UpdateRect(tt.rect)
			if got := loc.TopLeft(); got != tt.rect.Min {
				t.Errorf("TopLeft() = %v, want %v", got, tt.rect.Min)
			}
			if got := int(loc.Width()); got != tt.rect.Dx() {
				t.Errorf("Width() = %d, want %d", got, tt.rect.Dx())
			}
			if got := int(loc.Height()); got != tt.rect.Dy() {
				t.Errorf("Height() = %d, want %d", got, tt.rect.Dy())
			}
		})
	}
}

func TestAtlasLocatorPageTag(t *testing.T) {
	rect := image.Rect(123, 456, 789, 1000)

	for page := uint32(0); page < MaxPages; page++ {
		var loc AtlasLocator
		loc.UpdateRect(rect)
		loc.UpdatePlotLocator(NewPlotLocator(page, 7, 99))

		uvs := loc.UVs()
		if got := uvs[0] >> 13; uint32(got) != page {
			t.Errorf("page %d: u0 tag bits = %d", page, got)
		}
		if got := uvs[2] >> 13; uint32(got) != page {
			t.Errorf("page %d: u1 tag bits = %d", page, got)
		}
		if uvs[1]>>13 != 0 || uvs[3]>>13 != 0 {
			t.Errorf("page %d: v coordinates carry tag bits", page)
		}

		// The tag bits must cancel under subtraction and mask off
		// for position.
		if got := int(loc.Width()); got != rect.Dx() {
			t.Errorf("page %d: Width() = %d, want %d", page, got, rect.Dx())
		}
		if got := loc.TopLeft(); got != rect.Min {
			t.Errorf("page %d: TopLeft() = %v, want %v", page, got, rect.Min)
		}
		if got := loc.PageIndex(); got != page {
			t.Errorf("PageIndex() = %d, want %d", got, page)
		}
	}
}

func TestAtlasLocatorUpdateRectPreservesTag(t *testing.T) {
	var loc AtlasLocator
	loc.UpdateRect(image.Rect(1, 2, 3, 4))
	loc.UpdatePlotLocator(NewPlotLocator(3, 0, 5))
	loc.UpdateRect(image.Rect(10, 20, 30, 40))

	if got := loc.UVs()[0] >> 13; got != 3 {
		t.Errorf("u0 tag after UpdateRect = %d, want 3", got)
	}
	if got := loc.TopLeft(); got != image.Pt(10, 20) {
		t.Errorf("TopLeft() = %v, want (10,20)", got)
	}
}

func TestAtlasLocatorInsetSrc(t *testing.T) {
	var loc AtlasLocator
	rect := image.Rect(64, 128, 96, 160)
	loc.UpdateRect(rect)
	loc.UpdatePlotLocator(NewPlotLocator(2, 0, 1))

	const padding = 4
	loc.InsetSrc(padding)

	if got := loc.TopLeft(); got != image.Pt(rect.Min.X+padding, rect.Min.Y+padding) {
		t.Errorf("TopLeft() after inset = %v", got)
	}
	if got := int(loc.Width()); got != rect.Dx()-2*padding {
		t.Errorf("Width() after inset = %d, want %d", got, rect.Dx()-2*padding)
	}

	// Re-expanding restores the original rectangle.
	loc.InsetSrc(-padding)
	if got := loc.TopLeft(); got != rect.Min {
		t.Errorf("TopLeft() after re-expansion = %v, want %v", got, rect.Min)
	}
	if got := int(loc.Width()); got != rect.Dx() {
		t.Errorf("Width() after re-expansion = %d, want %d", got, rect.Dx())
	}
	if got := int(loc.Height()); got != rect.Dy() {
		t.Errorf("Height() after re-expansion = %d, want %d", got, rect.Dy())
	}
}

func TestAtlasLocatorInsetTooLarge(t *testing.T) {
	var loc AtlasLocator
	loc.UpdateRect(image.Rect(0, 0, 8, 8))
	defer func() {
		if recover() == nil {
			t.Error("InsetSrc did not panic on oversized padding")
		}
	}()
	loc.InsetSrc(5)
}

func TestAtlasLocatorInvalidate(t *testing.T) {
	var loc AtlasLocator
	rect := image.Rect(5, 6, 25, 36)
	loc.UpdateRect(rect)
	loc.UpdatePlotLocator(NewPlotLocator(1, 3, 77))

	loc.InvalidatePlotLocator()
	if loc.PlotLocator().IsValid() {
		t.Error("plot locator still valid after invalidation")
	}
	// The rectangle bits stay intact for diagnostics.
	if got := int(loc.Width()); got != rect.Dx() {
		t.Errorf("Width() after invalidation = %d, want %d", got, rect.Dx())
	}
}

func TestAtlasLocatorRectContractViolations(t *testing.T) {
	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{name: "right too large", rect: image.Rectangle{Min: image.Pt(0, 0), Max: image.Pt(0x2000, 1)}},
		{name: "left after right", rect: image.Rectangle{Min: image.Pt(10, 0), Max: image.Pt(5, 1)}},
		{name: "negative left", rect: image.Rectangle{Min: image.Pt(-1, 0), Max: image.Pt(5, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("UpdateRect did not panic")
				}
			}()
			var loc AtlasLocator
			loc.UpdateRect(tt.rect)
		})
	}
}
