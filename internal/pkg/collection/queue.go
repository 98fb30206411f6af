// Package collection provides utility data structures.
package collection

// Queue is a FIFO queue.
type Queue[T any] struct {
	data []T
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

func (q *Queue[T]) Push(v T) {
	q.data = append(q.data, v)
}

func (q *Queue[T]) Pop() T {
	if len(q.data) == 0 {
		var zero T
		return zero
	}

	v := q.data[0]
	q.data = q.data[1:]

	return v
}

func (q *Queue[T]) Len() int {
	return len(q.data)
}

// Iter drains the queue, yielding elements in FIFO order. Elements pushed
// while iterating are yielded as well.
func (q *Queue[T]) Iter(yield func(T) bool) {
	for len(q.data) > 0 {
		v := q.data[0]
		q.data = q.data[1:]

		if !yield(v) {
			break
		}
	}
}
