// Package staticdiarizer is a DiarizerAdapter test double that returns a
// fixed, caller-configured speaker layout regardless of the samples it
// receives, in the spirit of the teacher's lightweight fakes under
// cmd/transcriber/call's test helpers: enough behavior to drive scheduler
// and merge tests deterministically, without a real diarization model.
package staticdiarizer

import (
	"github.com/galak06/chunked-transcriber/internal/errs"
	"github.com/galak06/chunked-transcriber/internal/model"
)

// Adapter returns Err if set; otherwise it returns those Segments that
// overlap the requested window, clipped to its bounds. Samples are ignored.
type Adapter struct {
	Segments []model.SpeakerSegment
	Err      error
}

func New(segments []model.SpeakerSegment) *Adapter {
	return &Adapter{Segments: segments}
}

// WithErr returns an Adapter that always fails, for exercising the
// diarization_failed annotation path.
func WithErr(err error) *Adapter {
	return &Adapter{Err: &errs.DiarizerError{Err: err}}
}

func (a *Adapter) Diarize(samples []float32, startSeconds, endSeconds float64) ([]model.SpeakerSegment, error) {
	if a.Err != nil {
		return nil, a.Err
	}

	var out []model.SpeakerSegment
	for _, seg := range a.Segments {
		if seg.EndSeconds <= startSeconds || seg.StartSeconds >= endSeconds {
			continue
		}
		clipped := seg
		if clipped.StartSeconds < startSeconds {
			clipped.StartSeconds = startSeconds
		}
		if clipped.EndSeconds > endSeconds {
			clipped.EndSeconds = endSeconds
		}
		out = append(out, clipped)
	}
	return out, nil
}
