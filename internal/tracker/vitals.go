package tracker

import (
	"sync"

	"github.com/aitools-hub/link-engine/internal/types"
)

// Clamp bounds for advisory engagement signals. The vitals hook never rejects
// input: a broken client beacon degrades to a clamped observation, not an error.
const (
	maxScrollDepth   = 1.0
	maxTimeOnPage    = 4 * 60 * 60 // seconds; beyond this the tab was abandoned
	goodCLSThreshold = 0.1
	goodFIDThreshold = 100.0
)

// PageVitals aggregates best-effort Core-Web-Vitals-adjacent signals per page.
type PageVitals struct {
	URL               string           `json:"url"`
	Samples           int64            `json:"samples"`
	AvgTimeOnPage     float64          `json:"avg_time_on_page_seconds"`
	AvgScrollDepth    float64          `json:"avg_scroll_depth"`
	DeviceBreakdown   map[string]int64 `json:"device_breakdown"`
	CLS               float64          `json:"cls"`
	FID               float64          `json:"fid"`
	WithinGoodVitals  bool             `json:"within_good_vitals"`

	totalTimeOnPage  float64
	totalScrollDepth float64
}

// Vitals tracks per-page engagement signals alongside the link store.
// It is advisory only and never errors.
type Vitals struct {
	mu    sync.Mutex
	pages map[string]*PageVitals
}

// NewVitals creates an empty vitals tracker.
func NewVitals() *Vitals {
	return &Vitals{pages: make(map[string]*PageVitals)}
}

// Observe folds one set of client metrics into the page's aggregates.
// Out-of-range values are clamped to known-good bounds.
func (v *Vitals) Observe(url string, m types.UserMetrics) {
	timeOnPage := m.TimeOnPageSeconds
	if timeOnPage < 0 {
		timeOnPage = 0
	}
	if timeOnPage > maxTimeOnPage {
		timeOnPage = maxTimeOnPage
	}

	scroll := m.ScrollDepth
	if scroll < 0 {
		scroll = 0
	}
	if scroll > maxScrollDepth {
		scroll = maxScrollDepth
	}

	device := m.DeviceType
	switch device {
	case "mobile", "desktop", "tablet":
	default:
		device = "unknown"
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	page, ok := v.pages[url]
	if !ok {
		page = &PageVitals{
			URL:             url,
			DeviceBreakdown: make(map[string]int64),
			CLS:             goodCLSThreshold,
			FID:             goodFIDThreshold,
		}
		v.pages[url] = page
	}

	page.Samples++
	page.totalTimeOnPage += timeOnPage
	page.totalScrollDepth += scroll
	page.AvgTimeOnPage = page.totalTimeOnPage / float64(page.Samples)
	page.AvgScrollDepth = page.totalScrollDepth / float64(page.Samples)
	page.DeviceBreakdown[device]++
	page.WithinGoodVitals = page.CLS <= goodCLSThreshold && page.FID <= goodFIDThreshold
}

// Page returns a copy of the aggregates for a URL, if any were observed.
func (v *Vitals) Page(url string) (PageVitals, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	page, ok := v.pages[url]
	if !ok {
		return PageVitals{}, false
	}

	out := *page
	out.DeviceBreakdown = make(map[string]int64, len(page.DeviceBreakdown))
	for k, n := range page.DeviceBreakdown {
		out.DeviceBreakdown[k] = n
	}
	return out, true
}
