// Package ranking maintains a user-controlled display order over a collection
// by means of an integer rank per element.
//
// Order is always derived by sorting on rank; nothing caches positions. Moves
// swap rank values between adjacent elements and report the two elements that
// changed so the caller can persist them.
package ranking

import (
	"fmt"
	"sort"
	"time"
)

// Baseline is the rank given to the first element of an empty collection.
const Baseline = 1

// Ranked is an element of a rank-ordered collection.
type Ranked interface {
	Key() string
	GetRank() int
	SetRank(rank int)
	Created() time.Time
}

// Direction is a reorder request.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection converts user input into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("ranking: unknown direction %q", s)
	}
}

// NextRank returns the rank that sorts a new element after every existing one.
// Gaps are honoured: the result is always 1 + the maximum rank.
func NextRank[T Ranked](collection []T) int {
	if len(collection) == 0 {
		return Baseline
	}
	top := collection[0].GetRank()
	for _, e := range collection[1:] {
		if r := e.GetRank(); r > top {
			top = r
		}
	}
	return top + 1
}

// Sort orders collection in place by rank ascending. Tied ranks fall back to
// creation time, then key, so the display order is deterministic.
func Sort[T Ranked](collection []T) {
	sort.SliceStable(collection, func(i, j int) bool {
		return compare(collection[i], collection[j]) < 0
	})
}

func compare(a, b Ranked) int {
	switch ra, rb := a.GetRank(), b.GetRank(); {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	switch ca, cb := a.Created(), b.Created(); {
	case ca.Before(cb):
		return -1
	case ca.After(cb):
		return 1
	}
	switch ka, kb := a.Key(), b.Key(); {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

// IndexOf returns the position of key in collection, or -1.
func IndexOf[T Ranked](collection []T, key string) int {
	for i, e := range collection {
		if e.Key() == key {
			return i
		}
	}
	return -1
}

// MoveUp swaps the rank of key with its predecessor. collection must already
// be sorted. The two mutated elements are returned; nil means nothing
// changed (key is first or absent).
func MoveUp[T Ranked](collection []T, key string) []T {
	i := IndexOf(collection, key)
	if i <= 0 {
		return nil
	}
	return swap(collection, i, i-1)
}

// MoveDown swaps the rank of key with its successor. See MoveUp.
func MoveDown[T Ranked](collection []T, key string) []T {
	i := IndexOf(collection, key)
	if i < 0 || i == len(collection)-1 {
		return nil
	}
	return swap(collection, i, i+1)
}

// Move dispatches to MoveUp or MoveDown.
func Move[T Ranked](collection []T, key string, dir Direction) []T {
	switch dir {
	case Up:
		return MoveUp(collection, key)
	case Down:
		return MoveDown(collection, key)
	default:
		return nil
	}
}

// swap exchanges rank values by value; positions in the slice are untouched.
func swap[T Ranked](collection []T, i, j int) []T {
	a, b := collection[i], collection[j]
	ra, rb := a.GetRank(), b.GetRank()
	a.SetRank(rb)
	b.SetRank(ra)
	return []T{a, b}
}
