package tracker

import (
	"testing"

	"github.com/aitools-hub/link-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVitals_Observe(t *testing.T) {
	v := NewVitals()

	v.Observe("/blog/a", types.UserMetrics{TimeOnPageSeconds: 60, ScrollDepth: 0.5, DeviceType: "mobile"})
	v.Observe("/blog/a", types.UserMetrics{TimeOnPageSeconds: 120, ScrollDepth: 1.0, DeviceType: "desktop"})

	page, ok := v.Page("/blog/a")
	require.True(t, ok)
	assert.Equal(t, int64(2), page.Samples)
	assert.InDelta(t, 90.0, page.AvgTimeOnPage, 1e-9)
	assert.InDelta(t, 0.75, page.AvgScrollDepth, 1e-9)
	assert.Equal(t, int64(1), page.DeviceBreakdown["mobile"])
	assert.Equal(t, int64(1), page.DeviceBreakdown["desktop"])
	assert.True(t, page.WithinGoodVitals)
}

func TestVitals_ClampsBadInput(t *testing.T) {
	v := NewVitals()

	// A garbage beacon never raises; values are clamped into range.
	v.Observe("/blog/a", types.UserMetrics{TimeOnPageSeconds: -50, ScrollDepth: 9.5, DeviceType: "fridge"})

	page, ok := v.Page("/blog/a")
	require.True(t, ok)
	assert.Equal(t, 0.0, page.AvgTimeOnPage)
	assert.Equal(t, 1.0, page.AvgScrollDepth)
	assert.Equal(t, int64(1), page.DeviceBreakdown["unknown"])
}

func TestVitals_UnknownPage(t *testing.T) {
	v := NewVitals()
	_, ok := v.Page("/never-seen")
	assert.False(t, ok)
}
