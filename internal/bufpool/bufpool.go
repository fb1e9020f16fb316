// Package bufpool provides bucketed sync.Pool instances for the byte
// buffers the decoder window copies decoded frames into. A frame with a
// non-zero win_head_dist must survive past the call that produced it, so
// its pixels are copied into an owned buffer (spec.md §4.5); pooling that
// buffer avoids a fresh allocation on every retained frame.
//
// Adapted from the teacher's internal/pool/pool.go, which pools encoder
// scratch space by the same size-class scheme; here the buckets are sized
// for BGRA frame buffers instead.
package bufpool

import "sync"

// Size classes for bucketed pools.
const (
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
	Size4M   = 4194304
	Size16M  = 16777216
)

var sizes = [7]int{Size4K, Size16K, Size64K, Size256K, Size1M, Size4M, Size16M}

var pools [7]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

func bucketIndex(size int) int {
	for i, sz := range sizes {
		if size <= sz {
			return i
		}
	}
	return len(sizes) - 1
}

// Get returns a byte slice of length exactly size, backed by pooled
// capacity when size fits one of the buckets. The caller must call Put
// when the buffer is no longer referenced by any live window entry.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice obtained from Get back to the pool. Slices
// smaller than the smallest bucket are simply dropped.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	idx := bucketIndex(c)
	bs := b[:c]
	pools[idx].Put(&bs)
}
