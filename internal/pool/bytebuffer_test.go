package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferSetLengthGrows(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.SetLength(64)
	require.Equal(t, 64, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 64)
}

func TestByteBufferReset(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.Write([]byte("hello"))
	require.Equal(t, 5, bb.Len())
	bb.Reset()
	require.Equal(t, 0, bb.Len())
}

func TestRecordBufferPoolRoundTrip(t *testing.T) {
	bb := GetRecordBuffer()
	bb.SetLength(RecordBufferDefaultSize)
	require.Equal(t, RecordBufferDefaultSize, bb.Len())
	PutRecordBuffer(bb)

	bb2 := GetRecordBuffer()
	require.Equal(t, 0, bb2.Len())
	PutRecordBuffer(bb2)
}

func TestBlockBufferPoolDiscardsOversizedBuffers(t *testing.T) {
	bb := GetBlockBuffer()
	bb.SetLength(BlockBufferMaxThreshold + 1)
	PutBlockBuffer(bb)

	bb2 := GetBlockBuffer()
	require.LessOrEqual(t, cap(bb2.B), BlockBufferDefaultSize*2)
}
