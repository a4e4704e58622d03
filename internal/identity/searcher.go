package identity

// Searcher finds the nearest stored record to a query embedding. The store
// calls it with a consistent snapshot of its records; implementations must
// not retain or mutate the slice.
//
// The default is an exhaustive linear scan, which is the right complexity
// class for catalogs of tens to low thousands of identities: O(N*D) per
// query, O(1) writes, and every registration is visible to the next query
// with no index-rebuild latency. Larger catalogs can swap in an indexed
// implementation without touching the Identify contract.
type Searcher interface {
	// Nearest returns the index of the closest record and its distance.
	// ok is false when records is empty. Ties go to the lowest index so the
	// result is deterministic for a fixed store state.
	Nearest(query []float32, records []Record) (index int, distance float64, ok bool)
}

type linearSearcher struct {
	distance DistanceFunc
}

func (s linearSearcher) Nearest(query []float32, records []Record) (int, float64, bool) {
	if len(records) == 0 {
		return 0, 0, false
	}

	best := 0
	bestDist := s.distance(query, records[0].Embedding)
	for i := 1; i < len(records); i++ {
		// Strict less-than keeps the earlier record on exact ties.
		if d := s.distance(query, records[i].Embedding); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist, true
}
