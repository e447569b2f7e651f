package analysis

import (
	"strings"

	"github.com/formlens/formlens/internal/survey"
)

// UnknownBucket is the coerced value for missing answers in a
// cross-tabulation, so both sides of every pair account for every row.
const UnknownBucket = "Unknown"

// CorrelationMap maps an ordered pair key "<labelA> x <labelB>" to a
// two-level count map valueA -> valueB -> count. It exists so exact
// cross-tabulation questions can be answered by direct lookup instead of
// re-derivation from flat per-column distributions.
type CorrelationMap map[string]map[string]map[string]int

// PairKey builds the stable key for an ordered column pair.
func PairKey(a, b survey.Column) string {
	return a.Label + " x " + b.Label
}

// Correlate builds pairwise cross-tabulations over the first maxColumns
// visualizable columns. The cap bounds pair count at k·(k-1)/2; column
// order follows the source header order.
func Correlate(responses []survey.Response, cols []survey.Column, maxColumns int) CorrelationMap {
	if maxColumns <= 0 {
		maxColumns = 6
	}
	vis := make([]survey.Column, 0, maxColumns)
	for _, c := range cols {
		if !c.IsVisualizable {
			continue
		}
		vis = append(vis, c)
		if len(vis) == maxColumns {
			break
		}
	}

	cm := make(CorrelationMap)
	for i := 0; i < len(vis); i++ {
		for j := i + 1; j < len(vis); j++ {
			key := PairKey(vis[i], vis[j])
			table := make(map[string]map[string]int)
			for _, resp := range responses {
				a := bucketValue(resp[vis[i].ID])
				b := bucketValue(resp[vis[j].ID])
				if table[a] == nil {
					table[a] = make(map[string]int)
				}
				table[a][b]++
			}
			cm[key] = table
		}
	}
	return cm
}

func bucketValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return UnknownBucket
	}
	return v
}
