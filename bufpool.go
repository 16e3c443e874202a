package wire

import "sync"

// DefaultBufferSize is the capacity of freshly pooled buffers. Most
// envelopes are small, so 512B avoids re-allocations for common packet sizes.
const DefaultBufferSize = 512

// MaxPooledCapacity bounds what PutBuffer keeps. A buffer that grew past it
// for one large message is left to the GC rather than pinned in the pool.
var MaxPooledCapacity = 64 * 1024

// bufferPool reuses Buffers across encode/decode operations so the steady
// state send and receive paths do not allocate.
var bufferPool = sync.Pool{
	New: func() any {
		return NewBuffer(DefaultBufferSize)
	},
}

// GetBuffer returns an empty Buffer for exclusive use by one operation.
// Release it with PutBuffer on every exit path, usually with defer.
func GetBuffer() *Buffer {
	b := bufferPool.Get().(*Buffer)
	b.Reset()
	return b
}

// PutBuffer returns b to the pool. b must not be used afterwards, and no
// slice obtained from it may be retained.
func PutBuffer(b *Buffer) {
	if b == nil || b.Cap() > MaxPooledCapacity {
		return
	}
	b.Reset()
	bufferPool.Put(b)
}
