// Package arena provides a simple bump allocator. No other package in this
// module allocates from it: syntax nodes and symbols are ordinary Go values.
package arena

// Arena allocates fixed-size chunks and hands out pointers into them. It is
// not safe for concurrent use.
type Arena struct {
	chunkSize int
	chunks    [][]byte
	used      int
}

// New creates an Arena that allocates in chunks of chunkSize bytes.
func New(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	return &Arena{chunkSize: chunkSize}
}

func (a *Arena) current() []byte {
	if len(a.chunks) == 0 {
		return nil
	}
	return a.chunks[len(a.chunks)-1]
}

func (a *Arena) ensure(n int) []byte {
	cur := a.current()
	if cur == nil || a.used+n > len(cur) {
		size := a.chunkSize
		if n > size {
			size = n
		}
		a.chunks = append(a.chunks, make([]byte, size))
		a.used = 0
		return a.chunks[len(a.chunks)-1]
	}
	return cur
}

// Alloc returns a zeroed byte slice of length n backed by the arena.
func (a *Arena) Alloc(n int) []byte {
	chunk := a.ensure(n)
	b := chunk[a.used : a.used+n : a.used+n]
	a.used += n
	return b
}
