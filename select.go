package topoprep

// SelectRange returns the entries of counts with a count in the inclusive range
// [minCount, maxCount]. The result is empty, not nil, when minCount > maxCount.
func SelectRange(counts Counts, minCount, maxCount int) Counts {
	selected := make(Counts)
	if minCount > maxCount {
		return selected
	}

	for id, c := range counts {
		if c >= minCount && c <= maxCount {
			selected[id] = c
		}
	}

	return selected
}
