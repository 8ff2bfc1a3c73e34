package sortedlist

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SortedListTestSuite struct {
	suite.Suite
	list *SortedList[int]
}

func TestSortedListSuite(t *testing.T) {
	suite.Run(t, new(SortedListTestSuite))
}

func (s *SortedListTestSuite) SetupTest() {
	s.list = New[int]()
}

// assertLinks walks the arena from both ends and checks ordering, link
// symmetry and the size counter.
func (s *SortedListTestSuite) assertLinks(l *SortedList[int]) {
	s.T().Helper()

	if l.size == 0 {
		s.Empty(l.Values())
		s.Empty(l.Reversed())
		return
	}

	s.Equal(none, l.nodes[l.head].prev, "head should have no predecessor")
	s.Equal(none, l.nodes[l.tail].next, "tail should have no successor")

	count := 0
	for i := l.head; i != none; i = l.nodes[i].next {
		count++
		if n := l.nodes[i].next; n != none {
			s.Equal(i, l.nodes[n].prev, "next.prev should point back")
			s.LessOrEqual(l.nodes[i].value, l.nodes[n].value, "list should be ascending")
		}
		s.LessOrEqual(count, l.size, "forward walk should terminate within size")
		if count > l.size {
			return
		}
	}
	s.Equal(l.size, count, "size should match reachable nodes")

	rev := l.Reversed()
	slices.Reverse(rev)
	s.Equal(l.Values(), rev, "backward walk should mirror forward walk")
}

func (s *SortedListTestSuite) TestNewListIsEmpty() {
	// Assert
	s.Equal(0, s.list.Size())
	s.Equal("[]", s.list.String())
	s.Equal("[] [] size=0", s.list.InternalString())
	s.assertLinks(s.list)
}

func (s *SortedListTestSuite) TestZeroValueIsUsable() {
	// Setup
	var l SortedList[int]

	// Execute
	l.Remove(4)
	l.Add(4)
	l.Add(2)

	// Assert
	s.Equal([]int{2, 4}, l.Values())
	s.False(l.Contains(3))
	s.assertLinks(&l)
}

func (s *SortedListTestSuite) TestAddKeepsOrder() {
	tests := []struct {
		name     string
		input    []int
		expected []int
	}{
		{"ascending input", []int{1, 2, 3, 4}, []int{1, 2, 3, 4}},
		{"descending input", []int{9, 7, 5, 3}, []int{3, 5, 7, 9}},
		{"interleaved input", []int{5, 1, 3}, []int{1, 3, 5}},
		{"duplicates", []int{4, 2, 4, 2}, []int{2, 2, 4, 4}},
		{"negatives", []int{0, -3, 8, -10}, []int{-10, -3, 0, 8}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// Setup
			l := New[int]()

			// Execute
			for _, v := range tt.input {
				l.Add(v)
			}

			// Assert
			s.Equal(tt.expected, l.Values(), "values should be ascending")
			s.Equal(len(tt.input), l.Size(), "size should count every add")
			s.assertLinks(l)
		})
	}
}

func (s *SortedListTestSuite) TestAddAtExtremes() {
	// Setup
	s.list.Add(10)
	s.list.Add(20)

	// Execute
	s.list.Add(5)
	s.list.Add(25)

	// Assert
	first, err := s.list.Get(0)
	s.Require().NoError(err)
	last, err := s.list.Get(s.list.Size() - 1)
	s.Require().NoError(err)
	s.Equal(5, first, "smaller item should become head")
	s.Equal(25, last, "larger item should become tail")
	s.assertLinks(s.list)
}

func (s *SortedListTestSuite) TestDuplicatePlacedBeforeFirstEqual() {
	// Setup
	s.list.Add(1)
	s.list.Add(3)
	s.list.Add(5)
	three := s.list.head
	for s.list.nodes[three].value != 3 {
		three = s.list.nodes[three].next
	}

	// Execute
	s.list.Add(3)

	// Assert
	s.Equal([]int{1, 3, 3, 5}, s.list.Values())
	s.NotEqual(three, s.list.nodes[s.list.head].next, "new node should precede the existing 3")
	s.assertLinks(s.list)
}

func (s *SortedListTestSuite) TestGetBothHalves() {
	// Setup
	for _, v := range []int{30, 10, 50, 20, 40} {
		s.list.Add(v)
	}
	expected := []int{10, 20, 30, 40, 50}

	// Execute & Assert
	for i, want := range expected {
		got, err := s.list.Get(i)
		s.Require().NoError(err)
		s.Equal(want, got, "Get(%d) should match front-to-back position", i)
	}

	// even size exercises the midpoint from the tail side
	s.list.Add(60)
	got, err := s.list.Get(3)
	s.Require().NoError(err)
	s.Equal(40, got)
}

func (s *SortedListTestSuite) TestGetOutOfRange() {
	tests := []struct {
		name  string
		size  int
		index int
	}{
		{"negative on empty", 0, -1},
		{"zero on empty", 0, 0},
		{"negative", 3, -1},
		{"equal to size", 3, 3},
		{"far past end", 3, 100},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// Setup
			l := New[int]()
			for i := range tt.size {
				l.Add(i)
			}

			// Execute
			_, err := l.Get(tt.index)

			// Assert
			s.Require().Error(err)
			s.True(errors.Is(err, ErrIndexOutOfRange), "error should match ErrIndexOutOfRange")
			var idxErr *IndexError
			s.Require().True(errors.As(err, &idxErr))
			s.Equal(tt.index, idxErr.Index)
			s.Equal(tt.size, idxErr.Size)
		})
	}
}

func (s *SortedListTestSuite) TestIndexErrorMessage() {
	// Setup
	s.list.Add(1)

	// Execute
	_, err := s.list.Get(7)

	// Assert
	s.EqualError(err, "index out of bounds (7) for sorted list with size=1")
}

func (s *SortedListTestSuite) TestContains() {
	// Setup
	s.list.Add(3)
	s.list.Add(8)

	// Assert
	s.True(s.list.Contains(3))
	s.True(s.list.Contains(8))
	s.False(s.list.Contains(5))
	s.False(New[int]().Contains(0))
}

func (s *SortedListTestSuite) TestRemove() {
	tests := []struct {
		name     string
		input    []int
		remove   int
		expected []int
	}{
		{"head", []int{1, 2, 3}, 1, []int{2, 3}},
		{"tail", []int{1, 2, 3}, 3, []int{1, 2}},
		{"middle", []int{1, 2, 3}, 2, []int{1, 3}},
		{"only element", []int{7}, 7, []int{}},
		{"absent", []int{1, 3}, 2, []int{1, 3}},
		{"absent above tail", []int{1, 3}, 9, []int{1, 3}},
		{"first of duplicates", []int{2, 2, 5}, 2, []int{2, 5}},
		{"empty list", nil, 4, []int{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// Setup
			l := New[int]()
			for _, v := range tt.input {
				l.Add(v)
			}

			// Execute
			l.Remove(tt.remove)

			// Assert
			s.Equal(tt.expected, l.Values())
			s.Equal(len(tt.expected), l.Size())
			s.assertLinks(l)
		})
	}
}

func (s *SortedListTestSuite) TestAddThenRemoveRestoresList() {
	testCases := []struct {
		name string
		x    int
	}{
		{"new head", 1},
		{"middle", 25},
		{"between neighbours", 11},
		{"new tail", 99},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// Setup
			l := New[int]()
			for _, v := range []int{10, 20, 30, 40} {
				l.Add(v)
			}
			values, reversed, size := l.Values(), l.Reversed(), l.Size()

			// Execute
			l.Add(tc.x)
			s.Equal(size+1, l.Size(), "Add should grow the list")
			l.Remove(tc.x)

			// Assert
			s.Equal(values, l.Values(), "Forward order should be restored")
			s.Equal(reversed, l.Reversed(), "Backward order should be restored")
			s.Equal(size, l.Size(), "Size should be restored")
			s.False(l.Contains(tc.x), "Removed value should be gone")
			s.assertLinks(l)
		})
	}
}

func (s *SortedListTestSuite) TestRemoveReusesSlots() {
	// Setup
	for _, v := range []int{1, 2, 3, 4} {
		s.list.Add(v)
	}
	slots := len(s.list.nodes)

	// Execute
	s.list.Remove(2)
	s.list.Remove(3)
	s.list.Add(10)
	s.list.Add(0)

	// Assert
	s.Equal(slots, len(s.list.nodes), "freed slots should be reused")
	s.Equal([]int{0, 1, 4, 10}, s.list.Values())
	s.assertLinks(s.list)
}

func (s *SortedListTestSuite) TestClear() {
	// Setup
	for _, v := range []int{5, 6, 7} {
		s.list.Add(v)
	}

	// Execute
	s.list.Clear()

	// Assert
	s.Equal(0, s.list.Size())
	_, err := s.list.Get(0)
	s.ErrorIs(err, ErrIndexOutOfRange)
	s.assertLinks(s.list)

	// list is reusable after clear
	s.list.Add(2)
	s.Equal([]int{2}, s.list.Values())
	s.assertLinks(s.list)
}

func (s *SortedListTestSuite) TestScenarioFromUnsortedInput() {
	// Execute
	s.list.Add(5)
	s.list.Add(1)
	s.list.Add(3)

	// Assert
	s.Equal("[1, 3, 5] [5, 3, 1] size=3", s.list.InternalString())

	got, err := s.list.Get(1)
	s.Require().NoError(err)
	s.Equal(3, got)

	s.True(s.list.Contains(3))
	s.False(s.list.Contains(4))

	s.list.Remove(3)
	s.Equal("[1, 5] [5, 1] size=2", s.list.InternalString())

	s.list.Remove(42)
	s.Equal("[1, 5]", s.list.String())
}

func (s *SortedListTestSuite) TestRandomOperationsMatchSortedSlice() {
	// Setup
	rng := rand.New(rand.NewSource(7))
	var model []int

	// Execute
	for range 500 {
		v := rng.Intn(40)
		if rng.Intn(3) == 0 {
			s.list.Remove(v)
			if i, ok := slices.BinarySearch(model, v); ok {
				model = slices.Delete(model, i, i+1)
			}
		} else {
			s.list.Add(v)
			i, _ := slices.BinarySearch(model, v)
			model = slices.Insert(model, i, v)
		}

		// Assert
		s.Require().Equal(len(model), s.list.Size())
	}

	s.Equal(model, s.list.Values())
	for i, want := range model {
		got, err := s.list.Get(i)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
	s.assertLinks(s.list)
}

func (s *SortedListTestSuite) TestIteratorsStopEarly() {
	// Setup
	for _, v := range []int{1, 2, 3, 4} {
		s.list.Add(v)
	}

	// Execute
	var front, back []int
	for v := range s.list.All() {
		if v > 2 {
			break
		}
		front = append(front, v)
	}
	for v := range s.list.Backward() {
		if v < 3 {
			break
		}
		back = append(back, v)
	}

	// Assert
	s.Equal([]int{1, 2}, front)
	s.Equal([]int{4, 3}, back)
}

func (s *SortedListTestSuite) TestJSON() {
	// Setup
	s.list.Add(9)
	s.list.Add(4)

	// Execute
	data, err := json.Marshal(s.list)
	s.Require().NoError(err)

	restored := New[int]()
	s.Require().NoError(restored.UnmarshalJSON([]byte("[12, 3, 7]")))

	// Assert
	s.JSONEq("[4, 9]", string(data))
	s.Equal([]int{3, 7, 12}, restored.Values(), "decoded values should be re-sorted")
	s.assertLinks(restored)

	empty, err := json.Marshal(New[int]())
	s.Require().NoError(err)
	s.JSONEq("[]", string(empty))

	s.Error(restored.UnmarshalJSON([]byte(`{"a":1}`)))
}

func (s *SortedListTestSuite) TestStrings() {
	// Setup
	l := New[string]()

	// Execute
	l.Add("pear")
	l.Add("apple")
	l.Add("fig")

	// Assert
	s.Equal([]string{"apple", "fig", "pear"}, l.Values())
	s.Equal([]string{"pear", "fig", "apple"}, l.Reversed())
}

func (s *SortedListTestSuite) TestFloatEqualityVersusOrdering() {
	// Setup
	l := New[float64]()
	l.Add(1.5)
	l.Add(math.NaN())

	// Assert
	first, err := l.Get(0)
	s.Require().NoError(err)
	s.True(math.IsNaN(first), "NaN orders before every number")
	s.False(l.Contains(math.NaN()), "Contains uses ==, which never matches NaN")

	// Remove uses the ordering, which treats NaN as equal to itself
	l.Remove(math.NaN())
	s.Equal([]float64{1.5}, l.Values())
}
