// Package lumafile reads and writes the LUMA diagnostic file format
// (spec.md §6.5): a little-endian header followed by a raw luma
// plane, used to capture frames for offline replay and debugging.
package lumafile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync/atomic"
)

// temporalHeaderSize is the byte size of the structured header the
// core writes when the caller supplies no opaque user header.
const temporalHeaderSize = 4 + 4 + 8

// TemporalHeader is the structured header the core writes by default:
// the search-line offset and angle in effect when the frame was
// captured (spec.md §6.5).
type TemporalHeader struct {
	OffsetX      int32
	OffsetY      int32
	AngleDegrees float64
}

// Frame is one decoded LUMA file: its dimensions, header (either an
// opaque caller-supplied blob or the structured TemporalHeader), and
// the raw luma plane, width*height bytes, row-major.
type Frame struct {
	Width  int
	Height int

	// UserHeader, when non-nil, is written/read verbatim in place of
	// Temporal. Exactly one of UserHeader or Temporal is meaningful.
	UserHeader []byte
	Temporal   TemporalHeader

	Luma []byte
}

// CountingWriter wraps an io.Writer and tracks the number of bytes
// written through it.
type CountingWriter struct {
	Writer io.Writer
	Count  atomic.Int64
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	if err == nil {
		c.Count.Add(int64(n))
	}
	return n, err
}

// Write encodes f to w, returning the number of bytes written.
func Write(w io.Writer, f Frame) (int64, error) {
	if len(f.Luma) != f.Width*f.Height {
		return 0, fmt.Errorf("lumafile: luma length %d does not match %dx%d", len(f.Luma), f.Width, f.Height)
	}

	cw := &CountingWriter{Writer: w}

	if err := binary.Write(cw, binary.LittleEndian, int16(f.Width)); err != nil {
		return cw.Count.Load(), fmt.Errorf("lumafile: writing width: %w", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, int16(f.Height)); err != nil {
		return cw.Count.Load(), fmt.Errorf("lumafile: writing height: %w", err)
	}

	header := f.UserHeader
	if header == nil {
		header = encodeTemporalHeader(f.Temporal)
	}

	if err := binary.Write(cw, binary.LittleEndian, int32(len(header))); err != nil {
		return cw.Count.Load(), fmt.Errorf("lumafile: writing user header size: %w", err)
	}
	if len(header) > 0 {
		if _, err := cw.Write(header); err != nil {
			return cw.Count.Load(), fmt.Errorf("lumafile: writing header: %w", err)
		}
	}

	if _, err := cw.Write(f.Luma); err != nil {
		return cw.Count.Load(), fmt.Errorf("lumafile: writing luma plane: %w", err)
	}

	return cw.Count.Load(), nil
}

func encodeTemporalHeader(h TemporalHeader) []byte {
	buf := make([]byte, temporalHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.OffsetX))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.OffsetY))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(h.AngleDegrees))
	return buf
}

func decodeTemporalHeader(b []byte) TemporalHeader {
	return TemporalHeader{
		OffsetX:      int32(binary.LittleEndian.Uint32(b[0:4])),
		OffsetY:      int32(binary.LittleEndian.Uint32(b[4:8])),
		AngleDegrees: math.Float64frombits(binary.LittleEndian.Uint64(b[8:16])),
	}
}

// Reader reads LUMA diagnostic files from an io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read parses a complete LUMA file.
func Read(r io.Reader) (Frame, error) {
	return NewReader(r).ReadFrame()
}

// ReadFrame reads one Frame from the underlying reader.
func (rd *Reader) ReadFrame() (Frame, error) {
	var width, height int16
	if err := binary.Read(rd.r, binary.LittleEndian, &width); err != nil {
		return Frame{}, fmt.Errorf("lumafile: reading width: %w", err)
	}
	if err := binary.Read(rd.r, binary.LittleEndian, &height); err != nil {
		return Frame{}, fmt.Errorf("lumafile: reading height: %w", err)
	}

	var headerSize int32
	if err := binary.Read(rd.r, binary.LittleEndian, &headerSize); err != nil {
		return Frame{}, fmt.Errorf("lumafile: reading user header size: %w", err)
	}
	if headerSize < 0 {
		return Frame{}, fmt.Errorf("lumafile: negative user header size %d", headerSize)
	}

	header := make([]byte, headerSize)
	if headerSize > 0 {
		if _, err := io.ReadFull(rd.r, header); err != nil {
			return Frame{}, fmt.Errorf("lumafile: reading header: %w", err)
		}
	}

	f := Frame{Width: int(width), Height: int(height)}
	if headerSize == temporalHeaderSize {
		f.Temporal = decodeTemporalHeader(header)
	} else {
		f.UserHeader = header
	}

	luma := make([]byte, f.Width*f.Height)
	if _, err := io.ReadFull(rd.r, luma); err != nil {
		return Frame{}, fmt.Errorf("lumafile: reading luma plane: %w", err)
	}
	f.Luma = luma

	return f, nil
}
