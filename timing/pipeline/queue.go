package pipeline

// Queue is a bounded FIFO. Insertion order is program order.
type Queue[T any] struct {
	items    []T
	capacity int
}

// NewQueue creates an empty queue holding at most capacity items.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push appends item. It returns false and leaves the queue unchanged
// when the queue is full.
func (q *Queue[T]) Push(item T) bool {
	if len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, item)
	return true
}

// Pop removes and returns the oldest item.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.RemoveAt(0), true
}

// PopBatch removes and returns up to n of the oldest items.
func (q *Queue[T]) PopBatch(n int) []T {
	if n > len(q.items) {
		n = len(q.items)
	}

	out := make([]T, n)
	copy(out, q.items[:n])
	q.items = append(q.items[:0], q.items[n:]...)

	return out
}

// Peek returns the oldest item without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// At returns the i-th oldest item.
func (q *Queue[T]) At(i int) T {
	return q.items[i]
}

// RemoveAt removes and returns the i-th oldest item.
func (q *Queue[T]) RemoveAt(i int) T {
	item := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)
	return item
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int { return len(q.items) }

// Cap returns the capacity.
func (q *Queue[T]) Cap() int { return q.capacity }

// Full reports whether a Push would be rejected.
func (q *Queue[T]) Full() bool { return len(q.items) >= q.capacity }

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool { return len(q.items) == 0 }

// Clear drops every item.
func (q *Queue[T]) Clear() {
	var zero T
	for i := range q.items {
		q.items[i] = zero
	}
	q.items = q.items[:0]
}
