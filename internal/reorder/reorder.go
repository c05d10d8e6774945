// Package reorder implements list-splice moves and dense 1-based renumbering
// over any positional slice.
package reorder

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a move index falls outside the slice.
var ErrOutOfRange = errors.New("index out of range")

// Move returns a new slice with the element at from removed and reinserted at
// to. Elements between the two positions shift by one. from == to yields an
// unchanged copy. The input slice is never modified.
func Move[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n {
		return nil, fmt.Errorf("move from %d of %d: %w", from, n, ErrOutOfRange)
	}
	if to < 0 || to >= n {
		return nil, fmt.Errorf("move to %d of %d: %w", to, n, ErrOutOfRange)
	}

	out := make([]T, 0, n)
	moved := items[from]
	for i, it := range items {
		if i != from {
			out = append(out, it)
		}
	}
	out = append(out, moved)
	copy(out[to+1:], out[to:n-1])
	out[to] = moved
	return out, nil
}

// Renumber assigns position+1 to every element through set.
func Renumber[T any](items []T, set func(item *T, order int)) {
	for i := range items {
		set(&items[i], i+1)
	}
}

// Dense reports whether orders is exactly 1..len(orders) in sequence.
func Dense(orders []int) bool {
	for i, o := range orders {
		if o != i+1 {
			return false
		}
	}
	return true
}
