package input

// NoInput is returned by the navigator when a sequence has no editable cell.
const NoInput = -1

// FindNext returns the first editable cell after i, wrapping around. Passing
// -1 finds the first editable cell of the sequence.
func FindNext(cells Sequence, i int) int {
	return scan(cells, i, 1)
}

// FindPrevious returns the first editable cell before i, wrapping around.
func FindPrevious(cells Sequence, i int) int {
	return scan(cells, i, -1)
}

// scan visits at most len(cells) positions, so it terminates on sequences
// made only of literals.
func scan(cells Sequence, i, delta int) int {
	n := len(cells)
	if n == 0 {
		return NoInput
	}
	pos := i
	for range n {
		pos = ((pos+delta)%n + n) % n
		if cells[pos].Editable() {
			return pos
		}
	}
	return NoInput
}
