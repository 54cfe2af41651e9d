package atlas

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestMaskFormat(t *testing.T) {
	tests := []struct {
		format  MaskFormat
		bpp     int
		texture gputypes.TextureFormat
		str     string
	}{
		{MaskFormatA8, 1, gputypes.TextureFormatR8Unorm, "A8"},
		{MaskFormatA565, 2, gputypes.TextureFormatUndefined, "A565"},
		{MaskFormatARGB, 4, gputypes.TextureFormatRGBA8Unorm, "ARGB"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if !tt.format.Valid() {
				t.Error("Valid() = false")
			}
			if got := tt.format.BytesPerPixel(); got != tt.bpp {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.bpp)
			}
			if got := tt.format.TextureFormat(); got != tt.texture {
				t.Errorf("TextureFormat() = %v, want %v", got, tt.texture)
			}
			if got := tt.format.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestMaskFormatInvalid(t *testing.T) {
	for _, f := range []MaskFormat{-1, MaskFormat(MaskFormatCount)} {
		if f.Valid() {
			t.Errorf("MaskFormat(%d).Valid() = true", f)
		}
		if f.String() != "Unknown" {
			t.Errorf("MaskFormat(%d).String() = %q", f, f.String())
		}
	}
}
