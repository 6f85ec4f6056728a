// Package pool provides reusable byte buffers and string slices for the
// output path, where one buffer is rendered per row.
package pool

import (
	"io"
	"sync"
)

// Buffer sizes for the default pools.
const (
	RowBufferDefaultSize      = 1024 * 4         // 4KiB
	RowBufferMaxThreshold     = 1024 * 64        // 64KiB
	OutputBufferDefaultSize   = 1024 * 1024      // 1MiB
	OutputBufferMaxThreshold  = 1024 * 1024 * 64 // 64MiB
	stringSliceMaxPooledCount = 256
)

// ByteBuffer is an append-only byte slice that implements io.Writer.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates an empty ByteBuffer with the given capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the buffered data. The slice aliases the buffer.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer and keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

func (bb *ByteBuffer) Len() int { return len(bb.B) }
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// Write appends data. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteString appends s. It never fails.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.B = append(bb.B, s...)
	return len(s), nil
}

// WriteByte appends c. It never fails.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// WriteTo writes the buffered data to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers.
//
// Buffers that grew beyond maxThreshold are dropped on Put instead of being
// retained, so one huge row does not pin memory for the rest of the run.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize bytes.
// A maxThreshold of zero retains every buffer.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get returns an empty buffer.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool.
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
	rowPool    = NewByteBufferPool(RowBufferDefaultSize, RowBufferMaxThreshold)
	outputPool = NewByteBufferPool(OutputBufferDefaultSize, OutputBufferMaxThreshold)

	stringSlicePool = sync.Pool{
		New: func() any { return &[]string{} },
	}
)

// GetRowBuffer returns a buffer for rendering a single row.
func GetRowBuffer() *ByteBuffer { return rowPool.Get() }

// PutRowBuffer returns a row buffer to its pool.
func PutRowBuffer(bb *ByteBuffer) { rowPool.Put(bb) }

// GetOutputBuffer returns a buffer for collecting a whole output file before
// it is compressed.
func GetOutputBuffer() *ByteBuffer { return outputPool.Get() }

// PutOutputBuffer returns an output buffer to its pool.
func PutOutputBuffer(bb *ByteBuffer) { outputPool.Put(bb) }

// GetStringSlice returns a string slice of length size from the pool.
//
// The caller must call the returned cleanup function once it no longer uses
// the slice.
//
// Example:
//
//	values, cleanup := pool.GetStringSlice(len(columns))
//	defer cleanup()
func GetStringSlice(size int) ([]string, func()) {
	ptr, _ := stringSlicePool.Get().(*[]string)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]string, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() {
		if cap(*ptr) > stringSliceMaxPooledCount {
			return
		}
		clear(*ptr)
		stringSlicePool.Put(ptr)
	}
}
