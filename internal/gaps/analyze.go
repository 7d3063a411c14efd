package gaps

import (
	"math"
	"sort"

	"github.com/sells-group/prospector/internal/model"
)

// Completeness computes the weighted completeness percentage for a record:
// sum of weights of populated fields over the total weight, times 100,
// rounded to an integer. Recomputed from scratch on every call.
func Completeness(r *model.BusinessRecord) int {
	total := 0
	populated := 0
	for _, key := range allFields {
		w := fieldWeights[key]
		total += w
		if Populated(r, key) {
			populated += w
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(populated) / float64(total) * 100))
}

// Analyze partitions the record's fields into missing, priority-missing,
// and searchable-missing sets and computes the per-category breakdown.
// It is a pure function of the record's populated fields: identical input
// always yields identical output, in canonical field order.
func Analyze(r *model.BusinessRecord) model.GapAnalysis {
	ga := model.GapAnalysis{
		Completeness: Completeness(r),
		Breakdown:    make(map[string]int, 6),
	}

	catTotal := make(map[string]int, 6)
	catFilled := make(map[string]int, 6)

	for _, key := range allFields {
		cat := fieldCategories[key]
		catTotal[cat]++
		if Populated(r, key) {
			catFilled[cat]++
			continue
		}
		ga.Missing = append(ga.Missing, key)
		if fieldWeights[key] >= priorityCutoff {
			ga.Priority = append(ga.Priority, key)
		}
		if searchableFields[key] {
			ga.Searchable = append(ga.Searchable, key)
		}
	}

	for cat, total := range catTotal {
		if total == 0 {
			continue
		}
		ga.Breakdown[cat] = int(math.Round(float64(catFilled[cat]) / float64(total) * 100))
	}

	// Searchable gaps are consumed in descending weight order by the
	// orchestrator; sort here so callers do not have to.
	sort.SliceStable(ga.Searchable, func(i, j int) bool {
		return fieldWeights[ga.Searchable[i]] > fieldWeights[ga.Searchable[j]]
	})

	return ga
}
