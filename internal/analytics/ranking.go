package analytics

import (
	"sort"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

// DefaultTopN is the number of practice/clinic rows shown on the leaderboard.
const DefaultTopN = 10

type practiceKey struct {
	practice string
	clinic   string
}

// RankPractices groups orders by (practice, clinic), sorts the groups by order
// count descending and returns the first topN with dense 1-based ranks.
// Groups with equal counts keep the order in which they were first seen.
func RankPractices(orders []domain.Order, topN int) []domain.PracticeStats {
	if topN <= 0 {
		topN = DefaultTopN
	}

	counts := make(map[practiceKey]int)
	var keys []practiceKey
	for _, o := range orders {
		k := practiceKey{practice: o.PracticeName, clinic: o.ClinicName}
		if _, seen := counts[k]; !seen {
			keys = append(keys, k)
		}
		counts[k]++
	}

	rows := make([]domain.PracticeStats, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, domain.PracticeStats{
			PracticeName: k.practice,
			ClinicName:   k.clinic,
			OrderCount:   counts[k],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OrderCount > rows[j].OrderCount
	})

	if len(rows) > topN {
		rows = rows[:topN]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
