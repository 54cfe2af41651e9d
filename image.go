package atlas

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// SubImagePixels converts an image into the tightly packed pixel layout
// AddToAtlas expects for the given mask format, returning the pixels and
// the image dimensions. *image.Alpha sources convert to A8 and
// *image.RGBA sources to ARGB without an intermediate copy; everything
// else is drawn into an RGBA staging image first.
func SubImagePixels(img image.Image, f MaskFormat) ([]byte, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return nil, 0, 0
	}

	switch src := img.(type) {
	case *image.Alpha:
		if f == MaskFormatA8 {
			return tightRows(src.Pix, src.PixOffset(b.Min.X, b.Min.Y), src.Stride, w, h, 1), w, h
		}
	case *image.RGBA:
		if f == MaskFormatARGB {
			return tightRows(src.Pix, src.PixOffset(b.Min.X, b.Min.Y), src.Stride, w, h, 4), w, h
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)

	switch f {
	case MaskFormatA8:
		pixels := make([]byte, w*h)
		for i := range pixels {
			pixels[i] = rgba.Pix[i*4+3]
		}
		return pixels, w, h
	case MaskFormatA565:
		pixels := make([]byte, w*h*2)
		for i := 0; i < w*h; i++ {
			r := uint16(rgba.Pix[i*4+0]) >> 3
			g := uint16(rgba.Pix[i*4+1]) >> 2
			b := uint16(rgba.Pix[i*4+2]) >> 3
			v := r<<11 | g<<5 | b
			pixels[i*2+0] = byte(v)
			pixels[i*2+1] = byte(v >> 8)
		}
		return pixels, w, h
	default:
		// A fresh RGBA image has a tight stride.
		return rgba.Pix, w, h
	}
}

// tightRows copies h rows of w*bpp bytes out of a strided buffer.
func tightRows(pix []byte, offset, stride, w, h, bpp int) []byte {
	rowBytes := w * bpp
	out := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], pix[offset+y*stride:offset+y*stride+rowBytes])
	}
	return out
}
