package behavior

// ring is a fixed-capacity buffer that evicts the oldest value on
// overflow. Values returns entries oldest first.
type ring[T any] struct {
	buf []T
	cap int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{cap: capacity}
}

func (r *ring[T]) Push(v T) {
	r.buf = append(r.buf, v)
	if len(r.buf) > r.cap {
		r.buf = r.buf[1:]
	}
}

func (r *ring[T]) Values() []T {
	return r.buf
}

func (r *ring[T]) Len() int {
	return len(r.buf)
}
