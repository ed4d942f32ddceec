package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiversify_UnderThresholdPassesThrough(t *testing.T) {
	history := map[string]int64{
		"Try ChatGPT":    1,
		"ChatGPT review": 2,
		"this chatbot":   2,
	}

	got := Diversify("/ai-tools/chatgpt", "Try ChatGPT", history)
	assert.Equal(t, []string{"Try ChatGPT"}, got)
}

func TestDiversify_NoHistoryPassesThrough(t *testing.T) {
	got := Diversify("/ai-tools/chatgpt", "Try ChatGPT", nil)
	assert.Equal(t, []string{"Try ChatGPT"}, got)
}

func TestDiversify_OverThresholdReturnsVariants(t *testing.T) {
	history := map[string]int64{
		"Try ChatGPT": 7,
		"other":       3,
	}

	got := Diversify("/ai-tools/chatgpt", "Try ChatGPT", history)
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)
	assert.NotContains(t, got, "Try ChatGPT")
}

func TestDiversify_ExactThresholdIsAllowed(t *testing.T) {
	// 30% exactly does not trip the guard; only strictly greater does.
	history := map[string]int64{
		"Try ChatGPT": 3,
		"a":           3,
		"b":           4,
	}

	got := Diversify("/ai-tools/chatgpt", "Try ChatGPT", history)
	assert.Equal(t, []string{"Try ChatGPT"}, got)
}

func TestDiversify_ToolVariantsUseToolName(t *testing.T) {
	history := map[string]int64{"Midjourney": 10}

	got := Diversify("/ai-tools/midjourney", "Midjourney", history)
	assert.Equal(t, []string{"midjourney review", "try midjourney", "midjourney features"}, got)
}

func TestDiversify_BlogVariantsAreGeneric(t *testing.T) {
	history := map[string]int64{"read this post": 5}

	got := Diversify("/blog/ai-trends", "read this post", history)
	assert.Equal(t, []string{"read more", "full guide", "detailed article"}, got)
}

func TestDiversify_CategoryVariantsQualified(t *testing.T) {
	history := map[string]int64{"image tools": 5}

	got := Diversify("/ai-tools?category=image-generators", "image tools", history)
	assert.Equal(t, []string{
		"image generators tools",
		"best image generators software",
		"image generators solutions",
	}, got)
}

func TestDiversify_HomepageFallbackVariants(t *testing.T) {
	history := map[string]int64{"click here": 5}

	got := Diversify("/", "click here", history)
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "click here")
}

func TestDiversify_NeverReturnsCandidateAsSoleOutput(t *testing.T) {
	// Candidate collides with a template variant; it must still be excluded.
	history := map[string]int64{"read more": 9, "other": 1}

	got := Diversify("/blog/ai-trends", "read more", history)
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "read more")
}

func TestDiversify_Deterministic(t *testing.T) {
	history := map[string]int64{"Try ChatGPT": 7, "other": 3}
	first := Diversify("/ai-tools/chatgpt", "Try ChatGPT", history)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Diversify("/ai-tools/chatgpt", "Try ChatGPT", history))
	}
}
