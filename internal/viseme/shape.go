// Package viseme maps phoneme symbols onto the closed mouth-shape alphabet
// consumed by the head viewer's lip-sync controller.
package viseme

// Shape is one of the fixed mouth-shape categories. The alphabet is closed:
// mapping never produces a value outside it.
type Shape string

const (
	// Vowel shapes
	ShapeAA Shape = "AA" // open jaw (father)
	ShapeEE Shape = "EE" // wide spread (see)
	ShapeIH Shape = "IH" // short spread (sit)
	ShapeOH Shape = "OH" // open rounded (go)
	ShapeOU Shape = "OU" // tight rounded (boot)

	// Consonant closure shapes
	ShapePP Shape = "pp" // lips together (map, bat, pan)
	ShapeFF Shape = "ff" // teeth on lip (five)
	ShapeKK Shape = "kk" // back tongue (key, go)
	ShapeNN Shape = "nn" // nasal (no, sing)
	ShapeDD Shape = "dd" // tongue behind teeth (two, day)
	ShapeRR Shape = "rr" // slight pucker (run)
	ShapeSS Shape = "ss" // teeth together (see, zoo)
	ShapeCH Shape = "CH" // puckered narrow (church, joy)
	ShapeTH Shape = "TH" // tongue between teeth (thin, this)
)

// shapes is the membership set backing Valid and the candidate picks.
var shapes = map[Shape]struct{}{
	ShapeAA: {}, ShapeCH: {}, ShapeEE: {}, ShapeIH: {}, ShapeOH: {},
	ShapeOU: {}, ShapeTH: {}, ShapeDD: {}, ShapeFF: {}, ShapeKK: {},
	ShapeNN: {}, ShapePP: {}, ShapeRR: {}, ShapeSS: {},
}

// Valid reports whether s belongs to the shape alphabet.
func Valid(s Shape) bool {
	_, ok := shapes[s]
	return ok
}

// Alphabet returns the full shape alphabet in a stable order.
func Alphabet() []Shape {
	return []Shape{
		ShapeAA, ShapeCH, ShapeEE, ShapeIH, ShapeOH, ShapeOU, ShapeTH,
		ShapeDD, ShapeFF, ShapeKK, ShapeNN, ShapePP, ShapeRR, ShapeSS,
	}
}
