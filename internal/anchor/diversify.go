// Package anchor guards against anchor-text over-optimization.
//
// When a single exact-match phrase dominates the links pointing at a target,
// search engines treat the pattern as manipulative. The diversifier detects
// that condition and supplies deterministic natural-language alternatives.
package anchor

import (
	"regexp"
	"strings"

	"github.com/aitools-hub/link-engine/internal/classify"
	"github.com/aitools-hub/link-engine/internal/types"
)

// maxShare is the largest fraction of historical anchors a single phrase may
// hold before variants are forced. Fixed for behavioral compatibility; tunable
// if ever revisited.
const maxShare = 0.3

// maxVariants bounds the alternatives returned when the guard trips.
const maxVariants = 3

var (
	toolSlugRe = regexp.MustCompile(`/ai-tools/([^/]+)`)
	categoryRe = regexp.MustCompile(`category=([^&]+)`)
)

// Diversify checks candidate's share among the historical anchors recorded for
// a target. history maps anchor phrase to occurrence count across all links
// pointing at the target. If the candidate exceeds the over-optimization
// threshold, 1-3 generated variants are returned instead; otherwise the
// candidate passes through unchanged.
func Diversify(targetURL, candidate string, history map[string]int64) []string {
	var total int64
	for _, n := range history {
		total += n
	}

	if total > 0 {
		share := float64(history[candidate]) / float64(total)
		if share > maxShare {
			return variations(targetURL, candidate)
		}
	}

	return []string{candidate}
}

// variations generates deterministic anchor alternatives parameterized by the
// target's page type and an entity name extracted from its URL. The candidate
// itself is never included.
func variations(targetURL, candidate string) []string {
	var pool []string

	switch classify.PageType(targetURL) {
	case types.PageTool:
		name := toolName(targetURL)
		pool = []string{
			name + " review",
			"try " + name,
			name + " features",
			"learn more about " + name,
			name + " pricing",
			"get started with " + name,
			name + " alternatives",
			"how to use " + name,
		}
	case types.PageBlog:
		pool = []string{
			"read more",
			"full guide",
			"detailed article",
			"complete tutorial",
			"step-by-step guide",
			"expert insights",
			"latest updates",
			"comprehensive review",
		}
	case types.PageCategory:
		category := categoryName(targetURL)
		pool = []string{
			category + " tools",
			"best " + category + " software",
			category + " solutions",
			"top " + category + " platforms",
			category + " comparison",
			category + " reviews",
		}
	default:
		// Homepage/about targets have no entity to template on.
		pool = []string{
			"learn more",
			"see details",
			"visit this page",
			"find out more",
		}
	}

	out := make([]string, 0, maxVariants)
	for _, v := range pool {
		if strings.EqualFold(v, candidate) {
			continue
		}
		out = append(out, v)
		if len(out) == maxVariants {
			break
		}
	}
	return out
}

// toolName extracts a display name from a tool URL slug ("/ai-tools/claude-ai"
// becomes "claude ai").
func toolName(url string) string {
	if m := toolSlugRe.FindStringSubmatch(url); m != nil {
		return strings.ReplaceAll(m[1], "-", " ")
	}
	return "AI tool"
}

// categoryName extracts a category from a listing URL's query string.
func categoryName(url string) string {
	if m := categoryRe.FindStringSubmatch(url); m != nil {
		return strings.ReplaceAll(m[1], "-", " ")
	}
	return "AI"
}
