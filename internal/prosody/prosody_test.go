package prosody

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Emotion
		wantOK bool
	}{
		{"exact", "happy", EmotionHappy, true},
		{"uppercase", "HAPPY", EmotionHappy, true},
		{"mixed case with spaces", "  Excited ", EmotionExcited, true},
		{"neutral", "neutral", EmotionNeutral, true},
		{"unknown", "furious", EmotionNeutral, false},
		{"empty", "", EmotionNeutral, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestAllowedAllValid(t *testing.T) {
	all := Allowed()
	assert.Len(t, all, 7)
	for _, e := range all {
		assert.True(t, Valid(e))
	}
	assert.False(t, Valid(Emotion("bored")))
}

func TestAdjustmentRate(t *testing.T) {
	tests := []struct {
		emotion Emotion
		base    int
		want    int
	}{
		{EmotionNeutral, 200, 200},
		{EmotionEnergetic, 200, 200},
		{EmotionExcited, 200, 250},
		{EmotionSad, 200, 170},
		{EmotionGloomy, 200, 170},
		{EmotionAngry, 200, 220},
		// Truncation, not rounding.
		{EmotionHappy, 175, 201}, // 175 * 1.15 = 201.25
		{EmotionSad, 111, 94},    // 111 * 0.85 = 94.35
		{EmotionHappy, 200, 229}, // 200 * 1.15 lands just under 230 in float64
	}

	for _, tt := range tests {
		t.Run(string(tt.emotion), func(t *testing.T) {
			adj := AdjustmentFor(tt.emotion)
			assert.Equal(t, tt.want, adj.ApplyRate(tt.base))
		})
	}
}

func TestAdjustmentVolume(t *testing.T) {
	tests := []struct {
		emotion Emotion
		base    float64
		want    float64
	}{
		{EmotionNeutral, 1.0, 1.0},
		{EmotionHappy, 1.0, 1.0},  // 1.1 capped
		{EmotionHappy, 0.5, 0.55}, // below the cap
		{EmotionExcited, 0.95, 1.0},
		{EmotionSad, 1.0, 0.9},
		{EmotionGloomy, 0.5, 0.45},
		{EmotionAngry, 0.8, 0.8}, // rate-only adjustment
	}

	for _, tt := range tests {
		t.Run(string(tt.emotion), func(t *testing.T) {
			adj := AdjustmentFor(tt.emotion)
			assert.InDelta(t, tt.want, adj.ApplyVolume(tt.base), 1e-9)
		})
	}
}
