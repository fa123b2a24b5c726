// Package scoring holds the pure standings-points rule shared with the
// predictions backend, plus the list reordering primitive used by the
// what-if simulator.
package scoring

// StandingPoints scores one standings prediction. Positions are
// 1-based; zero means absent. An absent operand scores 0, an exact
// match 3, an off-by-one match 1, anything else 0.
func StandingPoints(predicted, actual int) int {
	if predicted <= 0 || actual <= 0 {
		return 0
	}
	if predicted == actual {
		return 3
	}
	diff := predicted - actual
	if diff == 1 || diff == -1 {
		return 1
	}
	return 0
}

// Reorder removes the element at from and inserts it at to, returning
// a new slice. Out-of-range indices are a programmer error and panic.
func Reorder[T any](list []T, from, to int) []T {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		panic("scoring: reorder index out of range")
	}
	out := make([]T, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	moved := list[from]
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out
}
