package extract

import (
	"slices"
	"strings"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

// Dedupe merges candidates gathered across the pages of one company. For
// each address the highest-confidence candidate wins, the earliest one on a
// tie. The result is sorted by descending confidence.
func Dedupe(candidates []lead.EmailCandidate) []lead.EmailCandidate {
	index := make(map[string]int, len(candidates))
	out := make([]lead.EmailCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := strings.ToLower(c.Email)
		c.Email = key
		if i, ok := index[key]; ok {
			if c.Confidence > out[i].Confidence {
				out[i] = c
			}
			continue
		}
		index[key] = len(out)
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b lead.EmailCandidate) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		default:
			return 0
		}
	})
	return out
}
