package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageAssignsDistinctIDs(t *testing.T) {
	a := NewMessage(KindScanReport, ScanReport{FormatID: "MDS-1254"})
	b := NewMessage(KindScanReport, ScanReport{FormatID: "MDS-1254"})
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, KindScanReport, a.Kind())
}

func TestNewDeterministicMessageIsStableForEqualPayloads(t *testing.T) {
	payload := ScanMetadata{FrameCount: 12, StatusCode: StatusHighConfidence}
	a, err := NewDeterministicMessage(KindScanMetadata, payload)
	require.NoError(t, err)
	b, err := NewDeterministicMessage(KindScanMetadata, payload)
	require.NoError(t, err)
	assert.Equal(t, a.ID(), b.ID())
}

func TestNewDeterministicMessageDiffersForDifferentPayloads(t *testing.T) {
	a, err := NewDeterministicMessage(KindScanMetadata, ScanMetadata{FrameCount: 1, StatusCode: StatusNotFound})
	require.NoError(t, err)
	b, err := NewDeterministicMessage(KindScanMetadata, ScanMetadata{FrameCount: 2, StatusCode: StatusNotFound})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestKindStringCoversEveryValue(t *testing.T) {
	for k := KindScanReport; k <= KindServerConnect; k++ {
		assert.NotEqual(t, "Unknown", k.String())
	}
	assert.Equal(t, "Unknown", Kind(99).String())
}

type fakeCodec struct {
	encoded map[[16]byte]Message
}

func (c *fakeCodec) Encode(m Message) ([]byte, error) {
	if c.encoded == nil {
		c.encoded = make(map[[16]byte]Message)
	}
	c.encoded[m.ID()] = m
	id := m.ID()
	return id[:], nil
}

func (c *fakeCodec) Decode(b []byte) (Message, error) {
	var id [16]byte
	copy(id[:], b)
	return c.encoded[id], nil
}

func TestCodecRoundTrip(t *testing.T) {
	var codec Codec = &fakeCodec{}
	msg := NewMessage(KindCommand, Command{Name: CommandShutdown})

	wire, err := codec.Encode(msg)
	require.NoError(t, err)
	got, err := codec.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, msg.ID(), got.ID())
	assert.Equal(t, msg.Kind(), got.Kind())
}
