package schedule

import (
	"slices"
	"strings"
)

// Compare orders obligations for quick-add and due lists: on-demand first
// by name, then cyclic by next due date, ties broken by name and id.
func Compare(a, b Obligation) int {
	if a.OnDemand != b.OnDemand {
		if a.OnDemand {
			return -1
		}
		return 1
	}
	if !a.OnDemand {
		if c := a.NextDueDate.Compare(b.NextDueDate); c != 0 {
			return c
		}
	}
	if c := strings.Compare(strings.ToLower(a.Type.Name), strings.ToLower(b.Type.Name)); c != 0 {
		return c
	}
	switch {
	case a.Type.ID < b.Type.ID:
		return -1
	case a.Type.ID > b.Type.ID:
		return 1
	}
	return 0
}

// Rank returns a sorted copy of obs.
func Rank(obs []Obligation) []Obligation {
	out := slices.Clone(obs)
	slices.SortStableFunc(out, Compare)
	return out
}

// RankDueItems returns a sorted copy of items, ordered by their obligations.
func RankDueItems(items []DueItem) []DueItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b DueItem) int {
		return Compare(a.Obligation, b.Obligation)
	})
	return out
}
