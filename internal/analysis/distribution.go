package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/formlens/formlens/internal/survey"
)

// DistributionEntry is one distinct value of a column with its count and
// share of valid answers, rounded to one decimal.
type DistributionEntry struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution is the frequency breakdown of one column.
type Distribution struct {
	ColumnID   string              `json:"column_id"`
	Label      string              `json:"label"`
	Entries    []DistributionEntry `json:"entries"`
	TotalValid int                 `json:"total_valid"`
}

// Distribute counts distinct non-empty trimmed values of col across the
// responses. Entries sort by descending count; ties keep the order in
// which each value first appeared in the response sequence, so repeated
// runs over the same data produce the same breakdown.
func Distribute(responses []survey.Response, col survey.Column) Distribution {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, resp := range responses {
		v := strings.TrimSpace(resp[col.ID])
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			firstSeen[v] = order
			order++
		}
		counts[v]++
	}

	d := Distribution{ColumnID: col.ID, Label: col.Label}
	for v, n := range counts {
		d.TotalValid += n
		d.Entries = append(d.Entries, DistributionEntry{Name: v, Count: n})
	}
	sort.Slice(d.Entries, func(i, j int) bool {
		if d.Entries[i].Count != d.Entries[j].Count {
			return d.Entries[i].Count > d.Entries[j].Count
		}
		return firstSeen[d.Entries[i].Name] < firstSeen[d.Entries[j].Name]
	})
	for i := range d.Entries {
		if d.TotalValid > 0 {
			pct := float64(d.Entries[i].Count) / float64(d.TotalValid) * 100
			d.Entries[i].Percentage = math.Round(pct*10) / 10
		}
	}
	return d
}
