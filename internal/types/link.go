// Package types provides type definitions for structured data used throughout the link engine.
package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// PageType buckets a URL into the site's navigational hierarchy.
type PageType string

// Page types, ordered from highest to lowest base authority.
const (
	PageHomepage PageType = "homepage"
	PageCategory PageType = "category"
	PageTool     PageType = "tool"
	PageBlog     PageType = "blog"
	PageAbout    PageType = "about"
)

// Valid reports whether pt is one of the known page types.
func (pt PageType) Valid() bool {
	switch pt {
	case PageHomepage, PageCategory, PageTool, PageBlog, PageAbout:
		return true
	}
	return false
}

// LinkContext describes where on a page a link appears.
type LinkContext string

// Link placement contexts.
const (
	ContextNavigation LinkContext = "navigation"
	ContextContextual LinkContext = "contextual"
	ContextRelated    LinkContext = "related"
	ContextFooter     LinkContext = "footer"
	ContextBreadcrumb LinkContext = "breadcrumb"
)

// Valid reports whether lc is one of the known link contexts.
func (lc LinkContext) Valid() bool {
	switch lc {
	case ContextNavigation, ContextContextual, ContextRelated, ContextFooter, ContextBreadcrumb:
		return true
	}
	return false
}

// ParseLinkContext parses a context string, returning an error for unknown values.
func ParseLinkContext(s string) (LinkContext, error) {
	lc := LinkContext(s)
	if !lc.Valid() {
		return "", fmt.Errorf("unknown link context: %q", s)
	}
	return lc, nil
}

// LinkKey identifies a tracked link by its (source, target) URL pair.
// Keys are immutable once created.
type LinkKey struct {
	SourceURL string
	TargetURL string
}

// String returns the canonical "source->target" form of the key.
func (k LinkKey) String() string {
	return k.SourceURL + "->" + k.TargetURL
}

// LinkRecord accumulates engagement metrics for a single (source, target) link.
// Invariant: ClickCount <= ImpressionCount, and CTR == ClickCount/ImpressionCount
// whenever ImpressionCount > 0.
type LinkRecord struct {
	SourceURL         string      `json:"source_url"`
	TargetURL         string      `json:"target_url"`
	AnchorText        string      `json:"anchor_text"`
	ClickCount        int64       `json:"click_count"`
	ImpressionCount   int64       `json:"impression_count"`
	CTR               float64     `json:"ctr"`
	ConversionRate    float64     `json:"conversion_rate"`
	BounceRate        float64     `json:"bounce_rate"`
	TimeOnPageSeconds float64     `json:"time_on_page_seconds"`
	AuthorityScore    float64     `json:"authority_score"`
	LastUpdated       time.Time   `json:"last_updated"`
	Context           LinkContext `json:"context"`
	SourcePageType    PageType    `json:"source_page_type"`
	TargetPageType    PageType    `json:"target_page_type"`
}

// Key returns the record's link identity.
func (r *LinkRecord) Key() LinkKey {
	return LinkKey{SourceURL: r.SourceURL, TargetURL: r.TargetURL}
}

// UserMetrics carries best-effort client-side engagement signals attached to a
// click event. Values are advisory: out-of-range inputs are clamped, not rejected.
type UserMetrics struct {
	TimeOnPageSeconds float64 `json:"time_on_page_seconds"`
	ScrollDepth       float64 `json:"scroll_depth"`
	DeviceType        string  `json:"device_type"`
	UserAgent         string  `json:"user_agent"`
}

// ClickEvent is the click beacon payload sent by client-side instrumentation.
type ClickEvent struct {
	SourceURL  string      `json:"source_url" validate:"required,min=1"`
	TargetURL  string      `json:"target_url" validate:"required,min=1"`
	AnchorText string      `json:"anchor_text"`
	Context    string      `json:"context" validate:"required"`
	Metrics    UserMetrics `json:"metrics"`
}

// Validate validates the ClickEvent using the validator.
func (e *ClickEvent) Validate() error {
	validate := validator.New()
	if err := validate.Struct(e); err != nil {
		return err
	}
	if _, err := ParseLinkContext(e.Context); err != nil {
		return err
	}
	return nil
}

// EngagementUpdate imports conversion and engagement analytics for a tracked link.
type EngagementUpdate struct {
	SourceURL         string  `json:"source_url" validate:"required,min=1"`
	TargetURL         string  `json:"target_url" validate:"required,min=1"`
	ConversionRate    float64 `json:"conversion_rate"`
	BounceRate        float64 `json:"bounce_rate"`
	TimeOnPageSeconds float64 `json:"time_on_page_seconds"`
}

// Validate validates the EngagementUpdate using the validator.
func (u *EngagementUpdate) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}

// RecommendationRequest asks for ranked outbound links for a source page.
type RecommendationRequest struct {
	SourceURL string `json:"source_url" validate:"required,min=1"`
	Content   string `json:"content"`
	MaxLinks  int    `json:"max_links" validate:"omitempty,min=1,max=50"`
}

// Validate validates the RecommendationRequest using the validator.
func (r *RecommendationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Recommendation is a single ranked link proposal for content placement.
type Recommendation struct {
	URL        string  `json:"url"`
	AnchorText string  `json:"anchor_text"`
	Context    string  `json:"context"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
}

// PageAuditRequest is the audit beacon payload: a rendered page and its URL.
type PageAuditRequest struct {
	URL  string `json:"url" validate:"required,min=1"`
	HTML string `json:"html" validate:"required,min=1"`
}

// Validate validates the PageAuditRequest using the validator.
func (r *PageAuditRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
