// Package authority assigns PageRank-style authority seeds to site pages.
//
// Seeds follow the site's fixed navigational hierarchy and are the only
// authority signal used at link-creation time. A full graph-wide propagation
// pass is deliberately not run inline with event ingestion; if ever needed it
// belongs in an offline batch job over a store snapshot.
package authority

import (
	"github.com/aitools-hub/link-engine/internal/classify"
	"github.com/aitools-hub/link-engine/internal/types"
)

// fallbackSeed covers page types outside the known hierarchy.
const fallbackSeed = 0.3

var seeds = map[types.PageType]float64{
	types.PageHomepage: 1.0,
	types.PageCategory: 0.8,
	types.PageTool:     0.6,
	types.PageBlog:     0.4,
	types.PageAbout:    0.2,
}

// Seed returns the base authority for a page type.
func Seed(pt types.PageType) float64 {
	if s, ok := seeds[pt]; ok {
		return s
	}
	return fallbackSeed
}

// Of returns the authority value for a URL, derived from its classified page type.
// It is a pure function of the URL: same input, same output.
func Of(url string) float64 {
	return Seed(classify.PageType(url))
}
