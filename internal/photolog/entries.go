package photolog

import (
	"fmt"
	"sync/atomic"
)

// Direction is a move direction within the entry list.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be up or down", s)
	}
}

// IDGenerator hands out session-unique entry ids.
type IDGenerator struct {
	last atomic.Int64
}

// Next returns a fresh id greater than every id handed out or observed.
func (g *IDGenerator) Next() int64 {
	return g.last.Add(1)
}

// Observe advances the generator past every id in list.
func (g *IDGenerator) Observe(list EntryList) {
	for _, e := range list {
		for {
			cur := g.last.Load()
			if e.ID <= cur || g.last.CompareAndSwap(cur, e.ID) {
				break
			}
		}
	}
}

// Renumber returns a copy of list where every entry's photo number equals its
// 1-based position.
func Renumber(list EntryList) EntryList {
	out := make(EntryList, len(list))
	for i, e := range list {
		e.number = i + 1
		out[i] = e
	}
	return out
}

// Add appends a new empty entry with a fresh id.
func Add(list EntryList, ids *IDGenerator) (EntryList, PhotoEntry) {
	out := make(EntryList, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, PhotoEntry{ID: ids.Next()})
	out = Renumber(out)
	return out, out[len(out)-1]
}

// Remove drops the entry with the given id. An unknown id leaves the list
// unchanged.
func Remove(list EntryList, id int64) EntryList {
	idx := list.Index(id)
	if idx < 0 {
		return Renumber(list)
	}
	out := make(EntryList, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return Renumber(out)
}

// Move swaps the entry with its neighbour in the given direction. Moving the
// first entry up, the last entry down or an unknown id is a no-op.
func Move(list EntryList, id int64, dir Direction) EntryList {
	idx := list.Index(id)
	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if idx < 0 || target < 0 || target >= len(list) {
		return Renumber(list)
	}
	out := make(EntryList, len(list))
	copy(out, list)
	out[idx], out[target] = out[target], out[idx]
	return Renumber(out)
}
