package atlas

import "github.com/gogpu/gputypes"

// MaskFormat describes the pixel layout of the sub-images stored in an
// atlas. The values are 0-based so that 1<<format yields the
// bytes-per-pixel.
type MaskFormat int

const (
	// MaskFormatA8 is a single 8-bit coverage channel.
	MaskFormatA8 MaskFormat = iota

	// MaskFormatA565 is 16-bit RGB, used for 3-channel LCD coverage.
	MaskFormatA565

	// MaskFormatARGB is full 32-bit color.
	MaskFormatARGB
)

// MaskFormatCount is the number of defined mask formats.
const MaskFormatCount = int(MaskFormatARGB) + 1

// BytesPerPixel returns the storage size of one pixel in this format.
func (f MaskFormat) BytesPerPixel() int {
	return 1 << f
}

// Valid reports whether f is one of the defined formats.
func (f MaskFormat) Valid() bool {
	return f >= MaskFormatA8 && f <= MaskFormatARGB
}

// TextureFormat returns the GPU texture format that stores this mask
// natively. A565 has no wgpu equivalent and reports Undefined; the upload
// bridge stages it through RGBA instead (see Atlas.Flush).
func (f MaskFormat) TextureFormat() gputypes.TextureFormat {
	switch f {
	case MaskFormatA8:
		return gputypes.TextureFormatR8Unorm
	case MaskFormatA565:
		return gputypes.TextureFormatUndefined
	case MaskFormatARGB:
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatUndefined
}

// String returns the format name for logging.
func (f MaskFormat) String() string {
	switch f {
	case MaskFormatA8:
		return "A8"
	case MaskFormatA565:
		return "A565"
	case MaskFormatARGB:
		return "ARGB"
	}
	return "Unknown"
}
