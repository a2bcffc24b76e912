package models

import "slices"

// Helpers shared by Workout and Routine for their active/deleted lists.
// Lookups are by value equality, not identity.

func indexOf[T any](list []T, item T, eq func(T, T) bool) int {
	return slices.IndexFunc(list, func(x T) bool { return eq(x, item) })
}

// moveItem removes from[i] and appends it to to.
func moveItem[T any](from, to []T, i int) ([]T, []T) {
	item := from[i]
	from = slices.Delete(slices.Clone(from), i, i+1)
	return from, append(to, item)
}

func cloneAll[T interface{ Clone() T }](list []T) []T {
	if list == nil {
		return nil
	}
	out := make([]T, len(list))
	for i, item := range list {
		out[i] = item.Clone()
	}
	return out
}

func equalSlices[T any](a, b []T, eq func(T, T) bool) bool {
	return slices.EqualFunc(a, b, eq)
}

// checkPartition verifies that neither list has nil items or duplicates and
// that no item appears in both.
func checkPartition[T comparable](op, what string, active, deleted []T, eq func(T, T) bool) error {
	var zero T
	all := make([]T, 0, len(active)+len(deleted))
	for _, list := range [][]T{active, deleted} {
		for _, item := range list {
			if item == zero {
				return invalidArg(op, "nil %s", what)
			}
			if indexOf(all, item, eq) >= 0 {
				return invalidArg(op, "duplicate %s", what)
			}
			all = append(all, item)
		}
	}
	return nil
}
