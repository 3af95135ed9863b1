// Package prosody defines the emotion vocabulary and the speech-rate and
// volume adjustments each emotion applies before synthesis.
package prosody

import "strings"

// Emotion tags a line of dialogue with a delivery style. The set is closed;
// Parse folds anything unrecognized to neutral.
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionExcited   Emotion = "excited"
	EmotionGloomy    Emotion = "gloomy"
	EmotionEnergetic Emotion = "energetic"
)

var allowed = map[Emotion]struct{}{
	EmotionNeutral: {}, EmotionHappy: {}, EmotionSad: {}, EmotionAngry: {},
	EmotionExcited: {}, EmotionGloomy: {}, EmotionEnergetic: {},
}

// Allowed returns the emotion vocabulary in a stable order.
func Allowed() []Emotion {
	return []Emotion{
		EmotionNeutral, EmotionHappy, EmotionSad, EmotionAngry,
		EmotionExcited, EmotionGloomy, EmotionEnergetic,
	}
}

// Valid reports whether e belongs to the vocabulary.
func Valid(e Emotion) bool {
	_, ok := allowed[e]
	return ok
}

// Parse normalizes raw input (CLI argument, model output) to an Emotion.
// Unrecognized values fall back to neutral; ok reports whether the input
// named a known emotion.
func Parse(raw string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(raw)))
	if Valid(e) {
		return e, true
	}
	return EmotionNeutral, false
}

// Adjustment scales the synthesizer's base delivery for one emotion.
type Adjustment struct {
	RateScale   float64
	VolumeScale float64
	ClampVolume bool // cap the scaled volume at 1.0
}

// adjustments holds the non-neutral rows. Emotions without an entry keep
// the base delivery untouched.
var adjustments = map[Emotion]Adjustment{
	EmotionHappy:   {RateScale: 1.15, VolumeScale: 1.1, ClampVolume: true},
	EmotionExcited: {RateScale: 1.25, VolumeScale: 1.1, ClampVolume: true},
	EmotionSad:     {RateScale: 0.85, VolumeScale: 0.9},
	EmotionGloomy:  {RateScale: 0.85, VolumeScale: 0.9},
	EmotionAngry:   {RateScale: 1.1, VolumeScale: 1.0},
}

// AdjustmentFor returns the delivery adjustment for e. Neutral, energetic
// and unknown emotions return the identity adjustment.
func AdjustmentFor(e Emotion) Adjustment {
	if a, ok := adjustments[e]; ok {
		return a
	}
	return Adjustment{RateScale: 1.0, VolumeScale: 1.0}
}

// ApplyRate scales a words-per-minute rate, truncating toward zero the way
// engine rate properties are set.
func (a Adjustment) ApplyRate(rate int) int {
	return int(float64(rate) * a.RateScale)
}

// ApplyVolume scales a 0..1 volume, capping at 1.0 when the adjustment
// calls for it.
func (a Adjustment) ApplyVolume(volume float64) float64 {
	v := volume * a.VolumeScale
	if a.ClampVolume && v > 1.0 {
		v = 1.0
	}
	return v
}
