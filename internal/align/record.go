// Package align builds the alignment record a head viewer plays back: the
// mouth-shape timeline for one synthesized audio file, plus the emotion
// the line was delivered with.
package align

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/normanking/cortexvoice/internal/prosody"
	"github.com/normanking/cortexvoice/internal/viseme"
)

// Interval holds one mouth shape and the half-open time span it covers,
// in seconds from the start of the audio.
type Interval struct {
	Shape viseme.Shape `json:"shape"`
	Start float64      `json:"start"`
	End   float64      `json:"end"`
}

// Record is the alignment document. Field order matches the wire format
// the viewer expects.
type Record struct {
	Audio    string          `json:"audio"`
	Phonemes []Interval      `json:"phonemes"`
	Emotion  prosody.Emotion `json:"emotion"`
}

// Build assembles a record. The audio path is normalized to forward
// slashes so records written on Windows still load everywhere.
func Build(audioPath string, intervals []Interval, emotion prosody.Emotion) Record {
	if intervals == nil {
		intervals = []Interval{}
	}
	return Record{
		Audio:    strings.ReplaceAll(audioPath, "\\", "/"),
		Phonemes: intervals,
		Emotion:  emotion,
	}
}

// Duration returns the end of the last interval, or zero for an empty
// timeline.
func (r Record) Duration() float64 {
	if len(r.Phonemes) == 0 {
		return 0
	}
	return r.Phonemes[len(r.Phonemes)-1].End
}

// Write marshals the record as indented JSON to path. It writes through
// a temporary file in the same directory and renames it into place, so a
// failed run never leaves a truncated alignment for the viewer to load.
func Write(path string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding alignment: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".align-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp alignment: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing alignment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing alignment: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting alignment permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving alignment into place: %w", err)
	}
	return nil
}

// Read loads a record written by Write.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading alignment %s: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding alignment %s: %w", path, err)
	}
	return rec, nil
}

const contiguityEpsilon = 1e-9

// Validate checks the invariants the viewer relies on: a non-empty audio
// path, a known emotion, shapes from the alphabet, and a timeline that
// starts at zero, never runs backwards, and has no gaps between slots.
func Validate(rec Record) error {
	if rec.Audio == "" {
		return fmt.Errorf("alignment has no audio path")
	}
	if !prosody.Valid(rec.Emotion) {
		return fmt.Errorf("alignment emotion %q not in vocabulary", rec.Emotion)
	}
	for i, iv := range rec.Phonemes {
		if !viseme.Valid(iv.Shape) {
			return fmt.Errorf("interval %d: shape %q not in alphabet", i, iv.Shape)
		}
		if iv.Start > iv.End {
			return fmt.Errorf("interval %d: start %.6f after end %.6f", i, iv.Start, iv.End)
		}
		if i == 0 {
			if iv.Start != 0 {
				return fmt.Errorf("timeline starts at %.6f, want 0", iv.Start)
			}
			continue
		}
		gap := iv.Start - rec.Phonemes[i-1].End
		if gap > contiguityEpsilon || gap < -contiguityEpsilon {
			return fmt.Errorf("interval %d: gap of %.9f after previous slot", i, gap)
		}
	}
	return nil
}
