// Package pool provides pooled byte buffers for the container writer.
//
// Encoding a container file appends many small records (names, attribute
// blocks, chunk index entries) into one growing buffer. Pooling the buffer
// keeps repeated WriteFile calls allocation-free after warmup.
package pool

import "sync"

// DefaultBufferSize is the initial capacity of a pooled buffer, sized for a
// typical container header plus layout section.
const DefaultBufferSize = 16 * 1024

// MaxPooledSize is the largest buffer returned to the pool. Buffers that grew
// beyond this while encoding a large layout are dropped so the pool does not
// pin oversized allocations.
const MaxPooledSize = 128 * 1024

// ByteBuffer is a minimal growable byte buffer. The underlying slice is
// exported so codec code can append through it directly.
type ByteBuffer struct {
	B []byte
}

// Bytes returns the accumulated bytes.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of accumulated bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer, keeping its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Write appends data, growing as needed. It never fails.
func (bb *ByteBuffer) Write(data []byte) {
	bb.B = append(bb.B, data...)
}

var bufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{B: make([]byte, 0, DefaultBufferSize)}
	},
}

// Get returns an empty buffer from the pool.
func Get() *ByteBuffer {
	bb, _ := bufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// Put returns a buffer to the pool unless it outgrew MaxPooledSize.
func Put(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > MaxPooledSize {
		return
	}
	bufferPool.Put(bb)
}
