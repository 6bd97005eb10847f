// Package render formats a model.Transcript as plain text or WebVTT,
// adapted from the teacher's transcribe/text.go and transcribe/webvtt.go.
// It is not one of the spec's ten components — the spec treats output file
// formatters as an external collaborator — but it is carried over as
// ambient tooling for a runnable cmd/transcribecore binary.
package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/galak06/chunked-transcriber/internal/model"
)

// Text writes one paragraph per segment, timestamped and speaker-labeled,
// in the teacher's Transcription.Text layout.
func Text(w io.Writer, t model.Transcript) error {
	for i, seg := range t.Segments {
		nl := "\n"
		if i == 0 {
			nl = ""
		}
		if _, err := fmt.Fprintf(w, "%s%s -> %s\n", nl, vttTimestamp(seg.StartSeconds, false), vttTimestamp(seg.EndSeconds, false)); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", seg.SpeakerID, strings.TrimSpace(seg.Text)); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
	}
	return nil
}

// WebVTTOptions mirrors the teacher's WebVTTOptions.
type WebVTTOptions struct {
	OmitSpeaker bool
}

// WebVTT writes t as a WebVTT cue list, in the teacher's
// Transcription.WebVTT layout.
func WebVTT(w io.Writer, t model.Transcript, opts WebVTTOptions) error {
	if _, err := fmt.Fprintf(w, "WEBVTT\n"); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}

	for _, seg := range t.Segments {
		text := html.EscapeString(strings.TrimSpace(seg.Text))
		if _, err := fmt.Fprintf(w, "\n%s --> %s\n", vttTimestamp(seg.StartSeconds, true), vttTimestamp(seg.EndSeconds, true)); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}

		tmpl := "<v %[1]s>(%[1]s) %[2]s\n"
		if opts.OmitSpeaker {
			tmpl = "%[2]s\n"
		}
		if _, err := fmt.Fprintf(w, tmpl, seg.SpeakerID, text); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
	}

	return nil
}

// vttTimestamp converts seconds into the 00:00:00[.000] format, same
// arithmetic as the teacher's vttTS but operating on float seconds instead
// of millisecond integers.
func vttTimestamp(seconds float64, withMs bool) string {
	totalMs := int64(math.Round(seconds * 1000))
	h := totalMs / 3600000
	m := (totalMs - h*3600000) / 60000
	remMs := totalMs - h*3600000 - m*60000

	if withMs {
		s := remMs / 1000
		ms := remMs - s*1000
		return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
	}

	s := remMs / 1000
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
