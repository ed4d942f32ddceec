// Package recommend ranks outbound link candidates for content placement by
// combining stored link performance with content relevance.
package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aitools-hub/link-engine/internal/anchor"
	"github.com/aitools-hub/link-engine/internal/classify"
	"github.com/aitools-hub/link-engine/internal/keywords"
	"github.com/aitools-hub/link-engine/internal/scoring"
	"github.com/aitools-hub/link-engine/internal/tracker"
	"github.com/aitools-hub/link-engine/internal/types"
)

// relevanceThreshold drops candidates whose keyword overlap with the content
// is too weak to justify an in-body link. Strictly greater-than.
const relevanceThreshold = 0.3

// defaultMaxLinks applies when the caller does not bound the result.
const defaultMaxLinks = 5

// Links proposes up to maxLinks contextual outbound links for a source page,
// ranked by score x relevance. An empty result means no candidate cleared the
// relevance threshold; that is a valid outcome, not an error.
func Links(store *tracker.Store, sourceURL, content string, maxLinks int) []types.Recommendation {
	if maxLinks <= 0 {
		maxLinks = defaultMaxLinks
	}

	sourceType := classify.PageType(sourceURL)
	contentKeywords := keywords.Extract(content)

	// Candidate pool: the strongest contextual links observed from pages of
	// the same type. Pulling 2x the requested count leaves room for the
	// relevance filter below.
	candidates := store.HighPerformers(types.ContextContextual, sourceType, 2*maxLinks)

	now := time.Now()
	recs := make([]types.Recommendation, 0, len(candidates))
	for i := range candidates {
		cand := &candidates[i]
		relevance := Relevance(contentKeywords, keywords.FromURL(cand.TargetURL))
		if relevance <= relevanceThreshold {
			continue
		}

		anchors := anchor.Diversify(cand.TargetURL, cand.AnchorText, store.AnchorCounts(cand.TargetURL))
		recs = append(recs, types.Recommendation{
			URL:        cand.TargetURL,
			AnchorText: anchors[0],
			Context:    string(types.ContextContextual),
			Score:      scoring.ScoreAt(cand, now) * relevance,
			Reason:     fmt.Sprintf("High-performing link with %.0f%% content relevance", relevance*100),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > maxLinks {
		recs = recs[:maxLinks]
	}
	return recs
}

// Relevance computes the keyword-overlap ratio between content keywords and a
// target's URL-derived keywords. A pair matches when either term contains the
// other, so "generator" still matches "generators".
func Relevance(contentKeywords, targetKeywords []string) float64 {
	if len(contentKeywords) == 0 && len(targetKeywords) == 0 {
		return 0
	}

	matched := 0
	for _, kw := range contentKeywords {
		for _, tk := range targetKeywords {
			if strings.Contains(tk, kw) || strings.Contains(kw, tk) {
				matched++
				break
			}
		}
	}

	denom := len(contentKeywords)
	if len(targetKeywords) > denom {
		denom = len(targetKeywords)
	}
	if denom < 1 {
		denom = 1
	}

	return float64(matched) / float64(denom)
}
