package scoring

// BonusPointsPerCell is awarded for each cell destroyed by a special tile's
// trigger effect rather than by a match
const BonusPointsPerCell = 10

// ComputeScore returns the points for a single match group of n cells
func ComputeScore(n int) int {
	switch {
	case n < 3:
		return 0
	case n == 3:
		return 60
	case n == 4:
		return 100
	default:
		return n * 40
	}
}

// BonusScore returns the points for n distinct trigger-cleared cells
func BonusScore(n int) int {
	if n <= 0 {
		return 0
	}
	return n * BonusPointsPerCell
}

// GroupsScore sums ComputeScore over a set of group sizes
func GroupsScore(sizes ...int) int {
	total := 0
	for _, n := range sizes {
		total += ComputeScore(n)
	}
	return total
}
