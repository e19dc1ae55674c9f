// Package pool provides pooled scratch buffers so reading and writing MCPL
// files does not allocate once steady state is reached.
package pool

import (
	"io"
	"sync"
)

// Default and max sizes for the record scratch buffer. A record is at most
// a handful of float64/int32/uint32 columns, so these are much smaller than
// a block of many records.
const (
	RecordBufferDefaultSize  = 128
	RecordBufferMaxThreshold = 4096

	// BlockBufferDefaultSize sizes the raw-byte staging buffer used when a
	// whole block of records is read/written in one transport call.
	BlockBufferDefaultSize  = 1024 * 256
	BlockBufferMaxThreshold = 1024 * 1024 * 16
)

// ByteBuffer is a growable byte slice meant to be reused via ByteBufferPool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Reset empties the buffer but keeps the backing array.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// SetLength sets the length of the buffer to n, growing if necessary.
func (bb *ByteBuffer) SetLength(n int) {
	bb.Grow(n - len(bb.B))
	bb.B = bb.B[:n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if requiredBytes <= 0 {
		return
	}
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}
	growBy := RecordBufferDefaultSize
	if cap(bb.B) > 4*RecordBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}
	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool pools ByteBuffers to minimize allocations.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers sized defaultSize, discarding
// buffers that grew past maxThreshold instead of returning them to the pool.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}
	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	recordPool = NewByteBufferPool(RecordBufferDefaultSize, RecordBufferMaxThreshold)
	blockPool  = NewByteBufferPool(BlockBufferDefaultSize, BlockBufferMaxThreshold)
)

// GetRecordBuffer retrieves a scratch buffer sized for one particle record.
func GetRecordBuffer() *ByteBuffer { return recordPool.Get() }

// PutRecordBuffer returns a record-sized scratch buffer to its pool.
func PutRecordBuffer(bb *ByteBuffer) { recordPool.Put(bb) }

// GetBlockBuffer retrieves a scratch buffer sized for a block of records.
func GetBlockBuffer() *ByteBuffer { return blockPool.Get() }

// PutBlockBuffer returns a block-sized scratch buffer to its pool.
func PutBlockBuffer(bb *ByteBuffer) { blockPool.Put(bb) }
