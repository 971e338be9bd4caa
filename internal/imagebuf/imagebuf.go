// Package imagebuf provides the packed row-major sample buffer the scan
// pipeline reads frames through. Buffer wraps externally-owned sample
// memory as a non-owning view: callers must not retain a Buffer beyond
// the frame it was built for.
package imagebuf

import (
	"fmt"

	"github.com/cardtrack/deckscan/internal/geom"
)

// Buffer is a width x height packed row-major sample plane over T. It
// never copies or owns Samples; the caller guarantees Samples outlives
// the Buffer.
type Buffer[T any] struct {
	Width, Height int
	Samples       []T
}

// New wraps samples as a Buffer, panicking if the length invariant
// (len(samples) == width*height) does not hold -- this is a programmer
// error, not a runtime condition the pipeline recovers from.
func New[T any](width, height int, samples []T) Buffer[T] {
	if len(samples) != width*height {
		panic(fmt.Sprintf("imagebuf: len(samples)=%d != width*height=%d", len(samples), width*height))
	}
	return Buffer[T]{Width: width, Height: height, Samples: samples}
}

// Rect returns the buffer's bounding rectangle, [0,Width) x [0,Height).
func (b Buffer[T]) Rect() geom.Rect {
	return geom.Rect{MinX: 0, MinY: 0, MaxX: b.Width, MaxY: b.Height}
}

// At returns the sample at (x,y) and true, or the zero value and false
// if (x,y) falls outside the buffer.
func (b Buffer[T]) At(x, y int) (T, bool) {
	var zero T
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return zero, false
	}
	return b.Samples[y*b.Width+x], true
}

// AtPoint is At via an IVec.
func (b Buffer[T]) AtPoint(p geom.IVec) (T, bool) {
	return b.At(p.X, p.Y)
}

// Set stores a sample at (x,y); it is a no-op if (x,y) is out of
// bounds, matching the "clip-aware" contract callers rely on when
// rasterizing debug overlays.
func (b Buffer[T]) Set(x, y int, v T) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.Samples[y*b.Width+x] = v
}
