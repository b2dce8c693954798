package search

// MaxPopularity is the highest popularity score the catalog reports.
const MaxPopularity = 100

// Accepts reports whether track qualifies under threshold. A threshold above
// MaxPopularity accepts everything; a threshold of zero or less accepts
// nothing; otherwise popularity must be strictly below it.
func Accepts(track Track, threshold int) bool {
	switch {
	case threshold > MaxPopularity:
		return true
	case threshold <= 0:
		return false
	default:
		return track.Popularity < threshold
	}
}
