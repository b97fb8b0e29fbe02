package filterchain

import "sort"

// PriorityQueue is a stable priority queue: items are yielded
// highest-priority-first, and items inserted at equal priority are yielded in
// insertion order (FIFO). Stability is achieved with a composite sort key —
// priority as the primary key and a monotonically increasing insertion
// sequence as the secondary key — rather than a bare heap, which would not
// guarantee FIFO on ties.
//
// The zero value is ready to use. PriorityQueue is not safe for concurrent
// use; callers that share a queue across goroutines must synchronize access.
type PriorityQueue[T any] struct {
	items   []queueItem[T]
	nextSeq uint64
	sorted  bool
}

type queueItem[T any] struct {
	value    T
	priority int
	seq      uint64
}

// NewPriorityQueue creates an empty queue.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{sorted: true}
}

// Insert adds value at the given priority. Existing items are never
// reordered relative to each other.
func (q *PriorityQueue[T]) Insert(value T, priority int) {
	q.items = append(q.items, queueItem[T]{
		value:    value,
		priority: priority,
		seq:      q.nextSeq,
	})
	q.nextSeq++
	q.sorted = false
}

// Len returns the number of items in the queue.
func (q *PriorityQueue[T]) Len() int {
	return len(q.items)
}

// Items returns a snapshot of the queued values in iteration order
// (priority descending, FIFO on ties). The queue is not mutated beyond
// maintaining its internal sort; the returned slice is owned by the caller.
func (q *PriorityQueue[T]) Items() []T {
	q.ensureSorted()

	out := make([]T, len(q.items))
	for i, it := range q.items {
		out[i] = it.value
	}

	return out
}

// Each walks the queue in iteration order, calling fn with each value and
// its priority.
func (q *PriorityQueue[T]) Each(fn func(value T, priority int)) {
	q.ensureSorted()

	for _, it := range q.items {
		fn(it.value, it.priority)
	}
}

// Remove deletes the first item (in iteration order) for which match returns
// true. It reports whether an item was removed. The relative order of the
// remaining items is unchanged.
func (q *PriorityQueue[T]) Remove(match func(value T) bool) bool {
	q.ensureSorted()

	for i, it := range q.items {
		if match(it.value) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}

	return false
}

// Clone returns an independent copy of the queue. The two queues share no
// mutable entry storage: inserting into or removing from one never affects
// the other. Sequence numbers are reassigned in iteration order so the clone
// preserves the original's ordering exactly.
func (q *PriorityQueue[T]) Clone() *PriorityQueue[T] {
	q.ensureSorted()

	clone := &PriorityQueue[T]{
		items:  make([]queueItem[T], len(q.items)),
		sorted: true,
	}

	for i, it := range q.items {
		clone.items[i] = queueItem[T]{
			value:    it.value,
			priority: it.priority,
			seq:      uint64(i),
		}
	}

	clone.nextSeq = uint64(len(q.items))

	return clone
}

// ensureSorted orders items by (priority descending, sequence ascending).
func (q *PriorityQueue[T]) ensureSorted() {
	if q.sorted {
		return
	}

	sort.Slice(q.items, func(i, j int) bool {
		if q.items[i].priority != q.items[j].priority {
			return q.items[i].priority > q.items[j].priority
		}

		return q.items[i].seq < q.items[j].seq
	})

	q.sorted = true
}
