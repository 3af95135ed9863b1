package viseme

import "strings"

// classRule groups ARPABET symbols that share an articulatory posture and
// names the shapes that can stand in for the group. Candidates are ordered
// by preference; the first one present in the alphabet wins.
type classRule struct {
	members    []string
	candidates []Shape
}

// classRules is evaluated top to bottom. Order matters: a symbol claimed by
// an earlier row never reaches a later one.
var classRules = []classRule{
	// Open vowels
	{members: []string{"AA", "AE", "AH"}, candidates: []Shape{ShapeAA}},
	// Front spread vowels
	{members: []string{"IY", "IH", "EY", "IX"}, candidates: []Shape{ShapeEE, ShapeIH}},
	{members: []string{"EH"}, candidates: []Shape{ShapeIH, ShapeEE}},
	// Rounded vowels and glides toward rounding
	{members: []string{"OW", "AO"}, candidates: []Shape{ShapeOH, ShapeOU}},
	{members: []string{"AW", "AY", "OY", "UH", "UW"}, candidates: []Shape{ShapeOU, ShapeOH}},
	// Bilabial closures
	{members: []string{"P", "B", "M"}, candidates: []Shape{ShapePP}},
	// Labiodental
	{members: []string{"F", "V"}, candidates: []Shape{ShapeFF}},
	// Velar stops
	{members: []string{"K", "G"}, candidates: []Shape{ShapeKK}},
	// Nasals
	{members: []string{"N", "NG"}, candidates: []Shape{ShapeNN}},
	// Alveolar stops
	{members: []string{"D", "T"}, candidates: []Shape{ShapeDD}},
	// Rhotics
	{members: []string{"R", "ER"}, candidates: []Shape{ShapeRR}},
	// Sibilants
	{members: []string{"S", "Z", "SH", "ZH"}, candidates: []Shape{ShapeSS}},
	// Affricates
	{members: []string{"CH", "JH"}, candidates: []Shape{ShapeCH}},
	// Dental fricatives
	{members: []string{"TH", "DH"}, candidates: []Shape{ShapeTH}},
}

// MapPhoneme resolves a single ARPABET symbol to its mouth shape. Symbols
// with no visible posture (L, W, Y, HH, silence) report ok=false and are
// dropped from the timeline. Matching is case-insensitive; stress digits
// must already be stripped.
func MapPhoneme(phoneme string) (Shape, bool) {
	p := strings.ToUpper(phoneme)
	for _, rule := range classRules {
		for _, m := range rule.members {
			if m != p {
				continue
			}
			for _, c := range rule.candidates {
				if Valid(c) {
					return c, true
				}
			}
		}
	}
	// A symbol that already names a shape passes through unchanged. Only
	// the uppercase shape names can match here.
	if s := Shape(p); Valid(s) {
		return s, true
	}
	return "", false
}

// MapSequence maps each phoneme in order, dropping the ones with no shape.
// The result is always a subsequence of the input's mapped shapes.
func MapSequence(phonemes []string) []Shape {
	out := make([]Shape, 0, len(phonemes))
	for _, p := range phonemes {
		if s, ok := MapPhoneme(p); ok {
			out = append(out, s)
		}
	}
	return out
}
