package lumafile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTripsTemporalHeader(t *testing.T) {
	luma := make([]byte, 4*3)
	for i := range luma {
		luma[i] = byte(i)
	}
	f := Frame{
		Width:    4,
		Height:   3,
		Temporal: TemporalHeader{OffsetX: 12, OffsetY: -7, AngleDegrees: 4.5},
		Luma:     luma,
	}

	var buf bytes.Buffer
	n, err := Write(&buf, f)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, f.Width, got.Width)
	assert.Equal(t, f.Height, got.Height)
	assert.Nil(t, got.UserHeader)
	assert.Equal(t, f.Temporal, got.Temporal)
	assert.Equal(t, f.Luma, got.Luma)
}

func TestWriteReadRoundTripsOpaqueUserHeader(t *testing.T) {
	f := Frame{
		Width:      2,
		Height:     2,
		UserHeader: []byte("abcxyz"),
		Luma:       []byte{1, 2, 3, 4},
	}

	var buf bytes.Buffer
	_, err := Write(&buf, f)
	require.NoError(t, err)

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, f.UserHeader, got.UserHeader)
	assert.Equal(t, TemporalHeader{}, got.Temporal)
}

func TestWriteRejectsMismatchedLumaLength(t *testing.T) {
	f := Frame{Width: 3, Height: 3, Luma: []byte{1, 2}}
	var buf bytes.Buffer
	_, err := Write(&buf, f)
	assert.Error(t, err)
}

func TestReadRejectsTruncatedLumaPlane(t *testing.T) {
	f := Frame{Width: 4, Height: 4, Luma: make([]byte, 16)}
	var buf bytes.Buffer
	_, err := Write(&buf, f)
	require.NoError(t, err)

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-5])
	_, err = Read(truncated)
	assert.Error(t, err)
}
