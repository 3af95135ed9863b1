// Package audio normalizes synthesized WAV files to 16-bit PCM and
// measures their duration. Providers emit whatever the underlying engine
// produces; the alignment timeline needs one canonical format and an
// exact frame count.
package audio

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const targetBitDepth = 16

// Normalize rewrites the WAV file at path as 16-bit PCM, preserving the
// sample rate and channel count, and returns its duration in seconds.
// Samples at other bit depths are rescaled by shifting so relative
// loudness is kept. The rewrite goes through a temporary file in the
// same directory and renames over the original.
func Normalize(path string) (float64, error) {
	buf, err := decode(path)
	if err != nil {
		return 0, err
	}

	if buf.SourceBitDepth != targetBitDepth {
		rescale(buf, buf.SourceBitDepth)
		buf.SourceBitDepth = targetBitDepth
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".wav-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp wav: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := wav.NewEncoder(tmp, buf.Format.SampleRate, targetBitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("encoding wav %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("finalizing wav %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp wav: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, fmt.Errorf("setting wav permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("moving wav into place: %w", err)
	}

	return seconds(buf), nil
}

// Duration returns the length of the WAV file at path in seconds,
// computed from the decoded frame count, without modifying the file.
func Duration(path string) (float64, error) {
	buf, err := decode(path)
	if err != nil {
		return 0, err
	}
	return seconds(buf), nil
}

func decode(path string) (*goaudio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wav %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("decoding wav %s: not a valid wav file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate == 0 {
		return nil, fmt.Errorf("decoding wav %s: missing format header", path)
	}
	if buf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("decoding wav %s: zero channels", path)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(dec.BitDepth)
	}
	return buf, nil
}

// rescale shifts every sample from the given bit depth to 16 bits. A
// shift keeps the waveform shape; 24-bit input drops the low byte.
// 8-bit WAV samples are unsigned around 128, so they are recentered
// before stretching into the signed 16-bit range.
func rescale(buf *goaudio.IntBuffer, fromBits int) {
	switch {
	case fromBits > targetBitDepth:
		shift := uint(fromBits - targetBitDepth)
		for i, s := range buf.Data {
			buf.Data[i] = s >> shift
		}
	case fromBits == 8:
		for i, s := range buf.Data {
			buf.Data[i] = (s - 128) << 8
		}
	case fromBits < targetBitDepth:
		shift := uint(targetBitDepth - fromBits)
		for i, s := range buf.Data {
			buf.Data[i] = s << shift
		}
	}
}

func seconds(buf *goaudio.IntBuffer) float64 {
	frames := len(buf.Data) / buf.Format.NumChannels
	return float64(frames) / float64(buf.Format.SampleRate)
}
