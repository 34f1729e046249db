package queue

import (
	"sort"
	"sync"
)

type entry[T any] struct {
	at   float64
	item T
}

// Queue is a thread-safe queue of items scheduled at a simulation time.
// Items scheduled for the same time come out in the order they were scheduled.
type Queue[T any] struct {
	mu    sync.Mutex
	items []entry[T]
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]entry[T], 0),
	}
}

// Schedule adds item to be released once the clock reaches at.
func (q *Queue[T]) Schedule(at float64, item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := sort.Search(len(q.items), func(i int) bool { return q.items[i].at > at })
	q.items = append(q.items, entry[T]{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = entry[T]{at: at, item: item}
}

// Due removes and returns every item scheduled at or before now.
func (q *Queue[T]) Due(now float64) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := sort.Search(len(q.items), func(i int) bool { return q.items[i].at > now })
	if n == 0 {
		return nil
	}
	due := make([]T, n)
	for i := 0; i < n; i++ {
		due[i] = q.items[i].item
	}
	q.items = append(q.items[:0], q.items[n:]...)
	return due
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear removes all items from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}
