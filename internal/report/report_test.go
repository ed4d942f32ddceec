package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/aitools-hub/link-engine/internal/scoring"
	"github.com/aitools-hub/link-engine/internal/tracker"
	"github.com/aitools-hub/link-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_EmptyStore(t *testing.T) {
	snap := Export(tracker.New(nil))

	assert.Empty(t, snap.Links)
	assert.Equal(t, 0, snap.Summary.TotalLinks)
	assert.Equal(t, 0.0, snap.Summary.AverageCTR)
	assert.Empty(t, snap.Summary.TopPerformers)
	assert.Empty(t, snap.Summary.UnderPerformers)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestExport_AverageCTR(t *testing.T) {
	s := tracker.New(nil)
	// One link at CTR 1.0, one at CTR 0.5.
	s.RecordClick("/blog/a", "/ai-tools/one", "one", types.ContextContextual, types.UserMetrics{})
	s.RecordClick("/blog/a", "/ai-tools/two", "two", types.ContextContextual, types.UserMetrics{})
	s.RecordImpression("/blog/a", "/ai-tools/two", "two", types.ContextContextual)

	snap := Export(s)
	assert.Equal(t, 2, snap.Summary.TotalLinks)
	assert.InDelta(t, 0.75, snap.Summary.AverageCTR, 1e-9)
}

func TestExport_PerformersSortedAndBounded(t *testing.T) {
	s := tracker.New(nil)
	for i := 0; i < 15; i++ {
		src := fmt.Sprintf("/blog/post-%02d", i)
		s.RecordClick(src, "/ai-tools/chatgpt", "Try ChatGPT", types.ContextContextual, types.UserMetrics{})
	}

	snap := Export(s)
	require.Len(t, snap.Links, 15)
	assert.Len(t, snap.Summary.TopPerformers, 10)
	assert.Len(t, snap.Summary.UnderPerformers, 10)

	now := time.Now()
	for i := 1; i < len(snap.Summary.TopPerformers); i++ {
		prev := scoring.ScoreAt(&snap.Summary.TopPerformers[i-1], now)
		cur := scoring.ScoreAt(&snap.Summary.TopPerformers[i], now)
		assert.GreaterOrEqual(t, prev, cur, "top performers must be sorted descending by score")
	}
	for i := 1; i < len(snap.Summary.UnderPerformers); i++ {
		prev := scoring.ScoreAt(&snap.Summary.UnderPerformers[i-1], now)
		cur := scoring.ScoreAt(&snap.Summary.UnderPerformers[i], now)
		assert.LessOrEqual(t, prev, cur, "under performers must be sorted ascending by score")
	}
}

func TestExport_LinksInStableOrder(t *testing.T) {
	s := tracker.New(nil)
	s.RecordClick("/blog/b", "/ai-tools/two", "two", types.ContextContextual, types.UserMetrics{})
	s.RecordClick("/blog/a", "/ai-tools/one", "one", types.ContextContextual, types.UserMetrics{})
	s.RecordClick("/blog/a", "/ai-tools/zzz", "zzz", types.ContextContextual, types.UserMetrics{})

	snap := Export(s)
	require.Len(t, snap.Links, 3)
	assert.Equal(t, "/ai-tools/one", snap.Links[0].TargetURL)
	assert.Equal(t, "/ai-tools/zzz", snap.Links[1].TargetURL)
	assert.Equal(t, "/ai-tools/two", snap.Links[2].TargetURL)
}
