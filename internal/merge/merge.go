// Package merge implements the Merger capability (spec §4.8): turning
// deduplicated, chronologically-ordered window transcripts into the final
// Transcript, with a synthetic speaker id when no diarizer ran.
package merge

import (
	"sort"
	"strings"

	"github.com/galak06/chunked-transcriber/internal/model"
)

// DefaultSpeakerID is assigned to every segment when diarization was not
// configured for the run (spec §4.8).
const DefaultSpeakerID = "speaker_0"

// Run concatenates every segment from the (already deduplicated) window
// transcripts in ascending start_seconds order, groups them by speaker,
// and renders full_text as their space-joined, trimmed concatenation.
func Run(transcripts []model.WindowTranscript) model.Transcript {
	var segments []model.SpeechSegment
	for _, t := range transcripts {
		segments = append(segments, t.Segments...)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].StartSeconds < segments[j].StartSeconds
	})

	speakers := make(map[string][]model.SpeechSegment)
	var texts []string
	for i := range segments {
		seg := &segments[i]
		if !seg.HasSpeaker || seg.SpeakerID == "" {
			seg.SpeakerID = DefaultSpeakerID
			seg.HasSpeaker = true
		}
		speakers[seg.SpeakerID] = append(speakers[seg.SpeakerID], *seg)

		text := strings.TrimSpace(seg.Text)
		if text != "" {
			texts = append(texts, text)
		}
	}

	return model.Transcript{
		Segments: segments,
		Speakers: speakers,
		FullText: strings.TrimSpace(strings.Join(texts, " ")),
	}
}
