// Package report summarizes the performance store for external dashboards.
package report

import (
	"sort"
	"time"

	"github.com/aitools-hub/link-engine/internal/scoring"
	"github.com/aitools-hub/link-engine/internal/tracker"
	"github.com/aitools-hub/link-engine/internal/types"
)

// performerCount bounds the top/under performer lists in the summary.
const performerCount = 10

// Summary aggregates store-wide link performance.
type Summary struct {
	TotalLinks      int                `json:"total_links"`
	AverageCTR      float64            `json:"average_ctr"`
	TopPerformers   []types.LinkRecord `json:"top_performers"`
	UnderPerformers []types.LinkRecord `json:"under_performers"`
}

// Snapshot is the full export shape consumed by the analytics dashboard.
type Snapshot struct {
	Links       []types.LinkRecord `json:"links"`
	Summary     Summary            `json:"summary"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Export builds a snapshot of the entire store. The summary sorts every record
// by score, which is fine at reporting scale but must not serve the
// per-request recommendation hot path.
func Export(store *tracker.Store) Snapshot {
	links := store.Records()
	now := time.Now()

	// Stable order for the full listing so exports diff cleanly.
	sort.Slice(links, func(i, j int) bool {
		if links[i].SourceURL != links[j].SourceURL {
			return links[i].SourceURL < links[j].SourceURL
		}
		return links[i].TargetURL < links[j].TargetURL
	})

	var ctrSum float64
	for i := range links {
		ctrSum += links[i].CTR
	}
	averageCTR := 0.0
	if len(links) > 0 {
		averageCTR = ctrSum / float64(len(links))
	}

	byScore := make([]types.LinkRecord, len(links))
	copy(byScore, links)
	sort.SliceStable(byScore, func(i, j int) bool {
		return scoring.ScoreAt(&byScore[i], now) > scoring.ScoreAt(&byScore[j], now)
	})

	top := make([]types.LinkRecord, 0, performerCount)
	for i := 0; i < len(byScore) && i < performerCount; i++ {
		top = append(top, byScore[i])
	}

	under := make([]types.LinkRecord, 0, performerCount)
	for i := len(byScore) - 1; i >= 0 && len(under) < performerCount; i-- {
		under = append(under, byScore[i])
	}

	return Snapshot{
		Links: links,
		Summary: Summary{
			TotalLinks:      len(links),
			AverageCTR:      averageCTR,
			TopPerformers:   top,
			UnderPerformers: under,
		},
		GeneratedAt: now,
	}
}
