// Package sortedlist provides a doubly linked list that keeps its elements in
// ascending order on every insertion.
//
// Nodes live in a slice owned by the list and link to each other by index, so
// removed slots are recycled instead of left for the garbage collector. The list
// is not safe for concurrent mutation.
package sortedlist

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// none marks a missing neighbour (before head, after tail).
const none = -1

// ErrIndexOutOfRange is matched by every *IndexError via errors.Is.
var ErrIndexOutOfRange = errors.New("index out of range")

// IndexError is returned by Get when the index is outside [0, size).
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of bounds (%d) for sorted list with size=%d", e.Index, e.Size)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

type node[T cmp.Ordered] struct {
	value T
	prev  int
	next  int
}

// SortedList is an ascending, doubly linked sequence. The zero value is an
// empty list ready to use.
//
// Duplicates are accepted; a duplicate is placed before the first element it
// compares equal to. Callers that need set semantics check Contains first.
type SortedList[T cmp.Ordered] struct {
	nodes []node[T]
	free  []int
	head  int
	tail  int
	size  int
}

// New returns an empty list.
func New[T cmp.Ordered]() *SortedList[T] {
	return &SortedList[T]{head: none, tail: none}
}

// Size returns the number of elements.
func (l *SortedList[T]) Size() int {
	return l.size
}

// Get returns the element at index, walking from whichever end is nearer.
func (l *SortedList[T]) Get(index int) (T, error) {
	if index < 0 || index >= l.size {
		var zero T
		return zero, &IndexError{Index: index, Size: l.size}
	}
	return l.nodes[l.at(index)].value, nil
}

func (l *SortedList[T]) at(index int) int {
	if index < (l.size+1)/2 {
		i := l.head
		for range index {
			i = l.nodes[i].next
		}
		return i
	}
	i := l.tail
	for range l.size - index - 1 {
		i = l.nodes[i].prev
	}
	return i
}

// Add inserts item, keeping the list ascending. Appending a value at least as
// large as the current tail takes constant time.
func (l *SortedList[T]) Add(item T) {
	i := l.alloc(item)
	l.size++

	if l.size == 1 {
		l.head, l.tail = i, i
		return
	}

	if cmp.Compare(item, l.nodes[l.tail].value) >= 0 {
		l.nodes[i].prev = l.tail
		l.nodes[l.tail].next = i
		l.tail = i
		return
	}

	// item is below the tail, so the scan stops at or before it.
	h := l.head
	for cmp.Compare(item, l.nodes[h].value) > 0 {
		h = l.nodes[h].next
	}

	p := l.nodes[h].prev
	l.nodes[i].prev = p
	l.nodes[i].next = h
	l.nodes[h].prev = i
	if p == none {
		l.head = i
	} else {
		l.nodes[p].next = i
	}
}

// Contains reports whether some element == item.
func (l *SortedList[T]) Contains(item T) bool {
	for v := range l.All() {
		if v == item {
			return true
		}
	}
	return false
}

// Remove deletes the first element that compares equal to item. Removing a
// value that is not present does nothing.
func (l *SortedList[T]) Remove(item T) {
	if l.size == 0 {
		return
	}
	for i := l.head; i != none; i = l.nodes[i].next {
		switch c := cmp.Compare(item, l.nodes[i].value); {
		case c == 0:
			l.unlink(i)
			return
		case c < 0:
			return
		}
	}
}

// Clear empties the list. The backing storage is kept for reuse.
func (l *SortedList[T]) Clear() {
	clear(l.nodes)
	l.nodes = l.nodes[:0]
	l.free = l.free[:0]
	l.head, l.tail = none, none
	l.size = 0
}

// All yields the elements front to back.
func (l *SortedList[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if l.size == 0 {
			return
		}
		for i := l.head; i != none; i = l.nodes[i].next {
			if !yield(l.nodes[i].value) {
				return
			}
		}
	}
}

// Backward yields the elements back to front, following prev links.
func (l *SortedList[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		if l.size == 0 {
			return
		}
		for i := l.tail; i != none; i = l.nodes[i].prev {
			if !yield(l.nodes[i].value) {
				return
			}
		}
	}
}

// Values returns a copy of the elements front to back.
func (l *SortedList[T]) Values() []T {
	out := make([]T, 0, l.size)
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

// Reversed returns a copy of the elements back to front.
func (l *SortedList[T]) Reversed() []T {
	out := make([]T, 0, l.size)
	for v := range l.Backward() {
		out = append(out, v)
	}
	return out
}

// String renders the list as "[a, b, c]".
func (l *SortedList[T]) String() string {
	return format(l.All())
}

// InternalString renders both traversal directions and the size, e.g.
// "[1, 3, 5] [5, 3, 1] size=3". The two sequences are built independently
// from next and prev links.
func (l *SortedList[T]) InternalString() string {
	return fmt.Sprintf("%s %s size=%d", format(l.All()), format(l.Backward()), l.size)
}

// MarshalJSON encodes the list as a JSON array in ascending order.
func (l *SortedList[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Values())
}

// UnmarshalJSON replaces the contents with the elements of a JSON array. The
// input does not need to be sorted.
func (l *SortedList[T]) UnmarshalJSON(data []byte) error {
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to decode sorted list: %w", err)
	}
	l.Clear()
	for _, v := range values {
		l.Add(v)
	}
	return nil
}

func (l *SortedList[T]) alloc(v T) int {
	n := node[T]{value: v, prev: none, next: none}
	if k := len(l.free); k > 0 {
		i := l.free[k-1]
		l.free = l.free[:k-1]
		l.nodes[i] = n
		return i
	}
	l.nodes = append(l.nodes, n)
	return len(l.nodes) - 1
}

func (l *SortedList[T]) unlink(i int) {
	p, n := l.nodes[i].prev, l.nodes[i].next
	if p == none {
		l.head = n
	} else {
		l.nodes[p].next = n
	}
	if n == none {
		l.tail = p
	} else {
		l.nodes[n].prev = p
	}

	l.size--
	if l.size == 0 {
		l.Clear()
		return
	}
	l.nodes[i] = node[T]{prev: none, next: none}
	l.free = append(l.free, i)
}

func format[T any](seq iter.Seq[T]) string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for v := range seq {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprint(&b, v)
	}
	b.WriteByte(']')
	return b.String()
}
