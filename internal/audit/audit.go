// Package audit extracts internal links from rendered pages so impressions
// accrue for every link the site actually serves, not only the ones users
// click.
package audit

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aitools-hub/link-engine/internal/tracker"
	"github.com/aitools-hub/link-engine/internal/types"
)

// PageLink is one internal link found on a rendered page, with its placement
// context inferred from the surrounding DOM.
type PageLink struct {
	SourceURL  string
	TargetURL  string
	AnchorText string
	Context    types.LinkContext
}

// ExtractionError reports a page that could not be audited.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("audit: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("audit: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ExtractLinks parses HTML and returns the internal links it contains.
// Cross-host links, fragments, and self-links are skipped. pageURL may be a
// site-relative path ("/blog/a") or an absolute URL.
func ExtractLinks(pageURL, htmlContent string) ([]PageLink, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &ExtractionError{Message: "failed to parse page URL", Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ExtractionError{Message: "failed to parse HTML", Cause: err}
	}

	sourcePath := pathOf(base)
	seen := make(map[string]bool)
	links := make([]PageLink, 0)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			// Malformed hrefs degrade to "skip this link".
			return
		}

		resolved := base.ResolveReference(linkURL)
		if resolved.Host != base.Host {
			return
		}

		targetPath := pathOf(resolved)
		if targetPath == "" || targetPath == sourcePath || seen[targetPath] {
			return
		}
		seen[targetPath] = true

		links = append(links, PageLink{
			SourceURL:  sourcePath,
			TargetURL:  targetPath,
			AnchorText: strings.TrimSpace(sel.Text()),
			Context:    classifyPosition(sel),
		})
	})

	return links, nil
}

// RecordImpressions audits a rendered page and records one impression per
// internal link found. Returns the number of links recorded.
func RecordImpressions(store *tracker.Store, pageURL, htmlContent string) (int, error) {
	links, err := ExtractLinks(pageURL, htmlContent)
	if err != nil {
		return 0, err
	}

	for _, link := range links {
		store.RecordImpression(link.SourceURL, link.TargetURL, link.AnchorText, link.Context)
	}
	return len(links), nil
}

// classifyPosition infers a link's placement context from its DOM ancestry.
// Breadcrumb markers win over the generic nav bucket; anything outside the
// recognized structural regions is treated as in-body contextual.
func classifyPosition(sel *goquery.Selection) types.LinkContext {
	for cur := sel.Parent(); cur.Length() > 0; cur = cur.Parent() {
		name := goquery.NodeName(cur)
		class, _ := cur.Attr("class")
		ariaLabel, _ := cur.Attr("aria-label")
		marker := strings.ToLower(class + " " + ariaLabel)

		if strings.Contains(marker, "breadcrumb") {
			return types.ContextBreadcrumb
		}

		switch name {
		case "nav", "header":
			return types.ContextNavigation
		case "footer":
			return types.ContextFooter
		case "aside":
			return types.ContextRelated
		case "html":
			return types.ContextContextual
		}

		if strings.Contains(marker, "related") {
			return types.ContextRelated
		}
	}
	return types.ContextContextual
}

// pathOf normalizes a URL to its path-plus-query form, the shape link
// identities are keyed by. Fragments are dropped; a bare host maps to "/".
func pathOf(u *url.URL) string {
	path := u.Path
	if path == "" {
		path = "/"
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
