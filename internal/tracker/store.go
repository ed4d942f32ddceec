// Package tracker implements the in-memory performance store for the internal
// link graph: one record per (source, target) pair, accumulating engagement
// signals under concurrent ingestion.
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/aitools-hub/link-engine/internal/authority"
	"github.com/aitools-hub/link-engine/internal/classify"
	"github.com/aitools-hub/link-engine/internal/scoring"
	"github.com/aitools-hub/link-engine/internal/types"
)

// EventKind discriminates the event log entries the store ingests and replays.
type EventKind string

// Event kinds.
const (
	EventClick      EventKind = "click"
	EventImpression EventKind = "impression"
	EventEngagement EventKind = "engagement"
)

// Event is one ingested occurrence, in the shape persisted to the event log.
type Event struct {
	Kind              EventKind         `json:"kind"`
	SourceURL         string            `json:"source_url"`
	TargetURL         string            `json:"target_url"`
	AnchorText        string            `json:"anchor_text,omitempty"`
	Context           types.LinkContext `json:"context,omitempty"`
	ConversionRate    float64           `json:"conversion_rate,omitempty"`
	BounceRate        float64           `json:"bounce_rate,omitempty"`
	TimeOnPageSeconds float64           `json:"time_on_page_seconds,omitempty"`
	OccurredAt        time.Time         `json:"occurred_at"`
}

// Sink receives committed events for best-effort durable persistence.
// Implementations must not block: ingestion is on the request hot path.
type Sink interface {
	Enqueue(ev Event)
}

// Store is the single source of truth for link performance data. All methods
// are safe for concurrent use; reads may observe slightly stale aggregates
// while writers are active.
type Store struct {
	mu      sync.RWMutex
	records map[types.LinkKey]*types.LinkRecord
	// anchors keeps the full anchor-phrase frequency history per link.
	// The record's AnchorText field only retains the latest phrase.
	anchors map[types.LinkKey]map[string]int64
	vitals  *Vitals
	sink    Sink
}

// New creates an empty store. sink may be nil for memory-only operation.
func New(sink Sink) *Store {
	return &Store{
		records: make(map[types.LinkKey]*types.LinkRecord),
		anchors: make(map[types.LinkKey]map[string]int64),
		vitals:  NewVitals(),
		sink:    sink,
	}
}

// RecordClick ingests a click event for the (source, target) link. The first
// occurrence creates the record with one click and one impression; repeats
// increment both counters and retain the latest anchor text. The attached user
// metrics are forwarded to the web-vitals hook, which clamps rather than
// rejects bad input.
func (s *Store) RecordClick(sourceURL, targetURL, anchorText string, ctx types.LinkContext, metrics types.UserMetrics) {
	ev := Event{
		Kind:       EventClick,
		SourceURL:  sourceURL,
		TargetURL:  targetURL,
		AnchorText: anchorText,
		Context:    ctx,
		OccurredAt: time.Now(),
	}
	s.apply(ev)
	s.vitals.Observe(sourceURL, metrics)
	s.forward(ev)
}

// RecordImpression ingests an impression-only event, typically from the page
// audit path when a link is rendered. Click counts are unchanged, so the
// clicks <= impressions invariant is preserved.
func (s *Store) RecordImpression(sourceURL, targetURL, anchorText string, ctx types.LinkContext) {
	ev := Event{
		Kind:       EventImpression,
		SourceURL:  sourceURL,
		TargetURL:  targetURL,
		AnchorText: anchorText,
		Context:    ctx,
		OccurredAt: time.Now(),
	}
	s.apply(ev)
	s.forward(ev)
}

// UpdateEngagement imports conversion and engagement analytics for an existing
// link. Rates are clamped to [0,1] and time-on-page to non-negative. Returns
// false if the link has never been observed; that is a no-signal condition,
// not an error.
func (s *Store) UpdateEngagement(sourceURL, targetURL string, conversionRate, bounceRate, timeOnPageSeconds float64) bool {
	ev := Event{
		Kind:              EventEngagement,
		SourceURL:         sourceURL,
		TargetURL:         targetURL,
		ConversionRate:    conversionRate,
		BounceRate:        bounceRate,
		TimeOnPageSeconds: timeOnPageSeconds,
		OccurredAt:        time.Now(),
	}
	applied := s.apply(ev)
	if applied {
		s.forward(ev)
	}
	return applied
}

// Apply replays a previously persisted event into the store without
// re-forwarding it to the sink. Event timestamps are preserved so freshness
// scoring survives a replay.
func (s *Store) Apply(ev Event) {
	s.apply(ev)
}

// apply mutates the store under the write lock. The critical section is
// limited to counter increments and timestamp updates.
func (s *Store) apply(ev Event) bool {
	key := types.LinkKey{SourceURL: ev.SourceURL, TargetURL: ev.TargetURL}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]

	switch ev.Kind {
	case EventEngagement:
		if !ok {
			return false
		}
		rec.ConversionRate = clamp01(ev.ConversionRate)
		rec.BounceRate = clamp01(ev.BounceRate)
		rec.TimeOnPageSeconds = clampNonNegative(ev.TimeOnPageSeconds)
		rec.LastUpdated = ev.OccurredAt
		return true

	case EventClick, EventImpression:
		if !ok {
			rec = &types.LinkRecord{
				SourceURL:      ev.SourceURL,
				TargetURL:      ev.TargetURL,
				AnchorText:     ev.AnchorText,
				Context:        ev.Context,
				SourcePageType: classify.PageType(ev.SourceURL),
				TargetPageType: classify.PageType(ev.TargetURL),
				AuthorityScore: authority.Of(ev.TargetURL),
			}
			s.records[key] = rec
		}

		rec.ImpressionCount++
		if ev.Kind == EventClick {
			rec.ClickCount++
		}
		rec.CTR = float64(rec.ClickCount) / float64(rec.ImpressionCount)
		if ev.AnchorText != "" {
			rec.AnchorText = ev.AnchorText
			hist := s.anchors[key]
			if hist == nil {
				hist = make(map[string]int64)
				s.anchors[key] = hist
			}
			hist[ev.AnchorText]++
		}
		rec.LastUpdated = ev.OccurredAt
		return true
	}

	return false
}

// forward hands the event to the persistence sink, if any.
func (s *Store) forward(ev Event) {
	if s.sink != nil {
		s.sink.Enqueue(ev)
	}
}

// Get returns a copy of the record for a link identity.
func (s *Store) Get(key types.LinkKey) (types.LinkRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return types.LinkRecord{}, false
	}
	return *rec, true
}

// Len returns the number of tracked links.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns copies of all tracked records in unspecified order.
func (s *Store) Records() []types.LinkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.LinkRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out
}

// HighPerformers returns up to limit records for a placement context and
// source page type, sorted by descending link score.
func (s *Store) HighPerformers(ctx types.LinkContext, sourceType types.PageType, limit int) []types.LinkRecord {
	s.mu.RLock()
	matched := make([]types.LinkRecord, 0)
	for _, rec := range s.records {
		if rec.Context == ctx && rec.SourcePageType == sourceType {
			matched = append(matched, *rec)
		}
	}
	s.mu.RUnlock()

	now := time.Now()
	sort.SliceStable(matched, func(i, j int) bool {
		return scoring.ScoreAt(&matched[i], now) > scoring.ScoreAt(&matched[j], now)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// AnchorCounts computes the historical anchor frequency view for a target URL:
// anchor phrase to occurrence count across all links pointing at the target.
// Every anchor ever observed counts, including phrases a later click
// overwrote on the record itself. The view is derived on demand, never stored.
func (s *Store) AnchorCounts(targetURL string) map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for key, hist := range s.anchors {
		if key.TargetURL != targetURL {
			continue
		}
		for phrase, n := range hist {
			counts[phrase] += n
		}
	}
	return counts
}

// WebVitals exposes the store's vitals tracker.
func (s *Store) WebVitals() *Vitals {
	return s.vitals
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
