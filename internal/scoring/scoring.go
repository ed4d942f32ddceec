// Package scoring combines engagement, authority, and freshness signals into a
// single comparable score per tracked link.
package scoring

import (
	"time"

	"github.com/aitools-hub/link-engine/internal/types"
)

// Component weights. Fixed for behavioral compatibility with the site's
// established ranking; tunable constants if ever revisited.
const (
	ctrWeight        = 0.30
	conversionWeight = 0.25
	engagementWeight = 0.20
	authorityWeight  = 0.15
	freshnessWeight  = 0.10
)

// ctrCap limits the CTR contribution so a single viral link cannot dominate
// the ranking.
const ctrCap = 10.0

// Score computes the weighted link score for a record as of now.
func Score(rec *types.LinkRecord) float64 {
	return ScoreAt(rec, time.Now())
}

// ScoreAt computes the weighted link score for a record as of a given instant.
func ScoreAt(rec *types.LinkRecord, now time.Time) float64 {
	ctrScore := rec.CTR * 100
	if ctrScore > ctrCap {
		ctrScore = ctrCap
	}
	conversionScore := rec.ConversionRate * 100
	engagementScore := (1 - rec.BounceRate) * (rec.TimeOnPageSeconds / 60)
	authorityScore := rec.AuthorityScore * 10
	freshnessScore := Freshness(rec.LastUpdated, now)

	return ctrScore*ctrWeight +
		conversionScore*conversionWeight +
		engagementScore*engagementWeight +
		authorityScore*authorityWeight +
		freshnessScore*freshnessWeight
}

// Freshness buckets a record's age into a strictly decreasing step function.
// The breakpoints encode the site's QDF (query-deserves-freshness) policy.
func Freshness(lastUpdated, now time.Time) float64 {
	days := now.Sub(lastUpdated).Hours() / 24

	switch {
	case days <= 7:
		return 10
	case days <= 30:
		return 8
	case days <= 90:
		return 6
	case days <= 180:
		return 4
	default:
		return 2
	}
}
