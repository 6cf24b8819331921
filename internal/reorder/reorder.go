// Package reorder assigns contiguous 1-based orders to sibling sequences.
//
// Every function returns a full assignment for the affected parent, in display
// order, with orders 1..N. Callers persist either the whole assignment or only
// the rows reported by Changed.
package reorder

import (
	"errors"
	"slices"
)

// ErrItemNotFound reports that the moved or removed id is not among the siblings.
var ErrItemNotFound = errors.New("item not found among siblings")

// Item is a sibling in display order with its currently stored order.
type Item struct {
	ID    int64
	Order int
}

// Assignment is the order an item must carry after the operation.
type Assignment struct {
	ID    int64
	Order int
}

// Reindex numbers the siblings 1..N in the sequence given.
func Reindex(siblings []Item) []Assignment {
	out := make([]Assignment, 0, len(siblings))
	for idx, item := range siblings {
		out = append(out, Assignment{ID: item.ID, Order: idx + 1})
	}
	return out
}

// Insert places id at index among siblings. The index is clamped to [0, len].
func Insert(siblings []Item, id int64, index int) []Assignment {
	index = clamp(index, len(siblings))
	seq := make([]Item, 0, len(siblings)+1)
	seq = append(seq, siblings[:index]...)
	seq = append(seq, Item{ID: id})
	seq = append(seq, siblings[index:]...)
	return Reindex(seq)
}

// Remove drops id from siblings and closes the gap.
func Remove(siblings []Item, id int64) ([]Assignment, error) {
	idx := indexOf(siblings, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	return Reindex(slices.Delete(slices.Clone(siblings), idx, idx+1)), nil
}

// Move relocates id within the same parent. The index refers to the sequence
// with id already removed.
func Move(siblings []Item, id int64, index int) ([]Assignment, error) {
	idx := indexOf(siblings, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	rest := slices.Delete(slices.Clone(siblings), idx, idx+1)
	return Insert(rest, id, index), nil
}

// MoveAcross removes id from source and inserts it into target at index.
func MoveAcross(source, target []Item, id int64, index int) (src, dst []Assignment, err error) {
	src, err = Remove(source, id)
	if err != nil {
		return nil, nil, err
	}
	if indexOf(target, id) >= 0 {
		return nil, nil, errors.New("item already present in target")
	}
	return src, Insert(target, id, index), nil
}

// Changed filters assignments down to the ids whose stored order differs.
// Ids absent from before are always reported.
func Changed(before []Item, after []Assignment) []Assignment {
	stored := make(map[int64]int, len(before))
	for _, item := range before {
		stored[item.ID] = item.Order
	}
	out := make([]Assignment, 0, len(after))
	for _, a := range after {
		if order, ok := stored[a.ID]; ok && order == a.Order {
			continue
		}
		out = append(out, a)
	}
	return out
}

func indexOf(items []Item, id int64) int {
	return slices.IndexFunc(items, func(item Item) bool { return item.ID == id })
}

func clamp(index, n int) int {
	return max(0, min(index, n))
}
