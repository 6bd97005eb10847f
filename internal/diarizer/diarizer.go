// Package diarizer defines the DiarizerAdapter capability (spec §4.5): an
// optional collaborator that assigns speaker labels to segments of an
// audio window. Diarization failures are non-fatal to a window's
// transcription per spec's edge cases — a window can complete with
// diarization_failed=true and unattributed text.
package diarizer

import "github.com/galak06/chunked-transcriber/internal/model"

// Adapter is the fixed capability set every diarization backend implements.
type Adapter interface {
	// Diarize returns the speaker segments detected within [startSeconds,
	// endSeconds) of samples. Implementations should return an
	// *errs.DiarizerError on failure so callers can distinguish
	// diarization failure from a fatal pipeline error.
	Diarize(samples []float32, startSeconds, endSeconds float64) ([]model.SpeakerSegment, error)
}
