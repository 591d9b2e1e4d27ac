package squash

import "errors"

var (
	// ErrInvalidConfig is returned for a zero or out of range color count,
	// tolerance, step or iteration count.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrMalformedBuffer is returned when a pixel buffer's length isn't a
	// multiple of 3.
	ErrMalformedBuffer = errors.New("malformed pixel buffer")

	// ErrBufferTooSmall is returned when an output buffer can't hold one index
	// per input pixel.
	ErrBufferTooSmall = errors.New("output buffer too small")
)
