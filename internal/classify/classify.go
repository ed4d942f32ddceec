// Package classify maps site URLs to page-type buckets.
package classify

import (
	"strings"

	"github.com/aitools-hub/link-engine/internal/types"
)

// PageType classifies a URL into one of the site's page-type buckets.
//
// Rules are checked in priority order and the first match wins:
// homepage, tool, blog, category, then about as the fallback bucket for
// everything else (including malformed or empty URLs).
func PageType(url string) types.PageType {
	if url == "/" || strings.Contains(url, "home") {
		return types.PageHomepage
	}
	if strings.Contains(url, "/ai-tools/") && !strings.Contains(url, "/ai-tools?") {
		return types.PageTool
	}
	if strings.Contains(url, "/blog/") {
		return types.PageBlog
	}
	if strings.Contains(url, "/ai-tools") || strings.Contains(url, "/category") {
		return types.PageCategory
	}
	return types.PageAbout
}
