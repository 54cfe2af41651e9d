package atlas

import "errors"

// Sentinel errors for the atlas package.
var (
	// ErrAtlasFull is returned when a sub-image can never fit: every
	// page is active and no plot can be evicted.
	ErrAtlasFull = errors.New("atlas: atlas is full")

	// ErrTryAgain is returned when a sub-image does not fit right now
	// but will once in-flight draws flush and a plot becomes evictable.
	// The caller should end its current draw and retry.
	ErrTryAgain = errors.New("atlas: no space until current draws flush")

	// ErrPixelMismatch is returned when the provided pixel data does
	// not match the requested dimensions and the atlas mask format.
	ErrPixelMismatch = errors.New("atlas: pixel data size does not match dimensions")

	// ErrNilTextureCreator is returned by Flush when no texture
	// creator is supplied.
	ErrNilTextureCreator = errors.New("atlas: nil texture creator")

	// ErrTextureNotUpdatable is returned by Flush when a page texture
	// does not implement gpucontext.TextureUpdater.
	ErrTextureNotUpdatable = errors.New("atlas: page texture does not support updates")
)
