package genre

import "sort"

// Match is an approximate occurrence of a pattern inside a text. Start and
// End are rune offsets, End exclusive.
type Match struct {
	Start    int
	End      int
	Distance int
	Matched  string
}

// FindNearMatches returns the spans of text within maxDist Levenshtein edits
// of pattern. Overlapping candidates are collapsed to the one with the fewest
// edits (longest span on ties) and the result is ordered by position.
func FindNearMatches(pattern, text string, maxDist int) []Match {
	p := []rune(pattern)
	t := []rune(text)
	if len(p) == 0 || len(t) == 0 || maxDist < 0 {
		return nil
	}

	m := len(p)
	// Column j holds the edit cost of p[:i] against some t[s:j] and the s
	// that achieves it. Row 0 is free so a match may begin anywhere.
	cost := make([]int, m+1)
	start := make([]int, m+1)
	prevCost := make([]int, m+1)
	prevStart := make([]int, m+1)
	for i := 0; i <= m; i++ {
		prevCost[i] = i
		prevStart[i] = 0
	}

	var candidates []Match
	for j := 1; j <= len(t); j++ {
		cost[0] = 0
		start[0] = j
		for i := 1; i <= m; i++ {
			sub := 1
			if p[i-1] == t[j-1] {
				sub = 0
			}
			best, from := prevCost[i-1]+sub, prevStart[i-1]
			if c := cost[i-1] + 1; c < best || (c == best && start[i-1] < from) {
				best, from = c, start[i-1]
			}
			if c := prevCost[i] + 1; c < best || (c == best && prevStart[i] < from) {
				best, from = c, prevStart[i]
			}
			cost[i], start[i] = best, from
		}

		if cost[m] <= maxDist && start[m] < j {
			candidates = append(candidates, Match{
				Start:    start[m],
				End:      j,
				Distance: cost[m],
			})
		}
		cost, prevCost = prevCost, cost
		start, prevStart = prevStart, start
	}

	matches := consolidate(candidates)
	for i := range matches {
		matches[i].Matched = string(t[matches[i].Start:matches[i].End])
	}
	return matches
}

func consolidate(candidates []Match) []Match {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Start != candidates[b].Start {
			return candidates[a].Start < candidates[b].Start
		}
		return candidates[a].End < candidates[b].End
	})

	var out []Match
	best := candidates[0]
	groupEnd := best.End
	for _, c := range candidates[1:] {
		if c.Start < groupEnd {
			if better(c, best) {
				best = c
			}
			if c.End > groupEnd {
				groupEnd = c.End
			}
			continue
		}
		out = append(out, best)
		best, groupEnd = c, c.End
	}
	return append(out, best)
}

func better(a, b Match) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.End-a.Start > b.End-b.Start
}
