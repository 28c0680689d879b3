// Package db is the sandbox's in-memory storage: one Table per resource,
// rows keyed by an auto-incremented int64 and listed in insertion order.
package db

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("record not found")

type Table[T any] struct {
	name   string
	mu     sync.RWMutex
	rows   map[int64]T
	order  []int64
	nextID int64
}

func NewTable[T any](name string) *Table[T] {
	return &Table[T]{name: name, rows: make(map[int64]T), nextID: 1}
}

func (t *Table[T]) Name() string {
	return t.name
}

// Insert allocates the next id and stores the row build returns for it.
func (t *Table[T]) Insert(build func(id int64) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	row := build(id)
	t.rows[id] = row
	t.order = append(t.order, id)
	return row
}

func (t *Table[T]) Get(id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

// Update replaces row id with fn(row).
func (t *Table[T]) Update(id int64, fn func(T) T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	row = fn(row)
	t.rows[id] = row
	return row, nil
}

func (t *Table[T]) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns every row in insertion order.
func (t *Table[T]) List() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// Find returns the first row, in insertion order, that match accepts.
func (t *Table[T]) Find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Truncate drops every row and restarts ids at 1.
func (t *Table[T]) Truncate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = make(map[int64]T)
	t.order = nil
	t.nextID = 1
}
