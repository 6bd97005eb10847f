// Package model holds the data types shared across the chunked
// transcription core's components (spec §3).
package model

import "time"

// WindowSpec is a single unit of work produced by the Windower (spec §4.1).
type WindowSpec struct {
	Index                  int
	StartSeconds           float64
	EndSeconds             float64
	ExpectedOverlapSeconds float64
}

func (w WindowSpec) Duration() float64 {
	return w.EndSeconds - w.StartSeconds
}

// ChunkStatus is the ChunkRecord state machine (spec §4.3).
type ChunkStatus string

const (
	StatusCreated    ChunkStatus = "created"
	StatusProcessing ChunkStatus = "processing"
	StatusCompleted  ChunkStatus = "completed"
	StatusError      ChunkStatus = "error"
)

// SpeakerSegment is a diarizer-assigned time range (spec §3).
type SpeakerSegment struct {
	SpeakerID    string  `json:"speaker_id"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// ChunkRecord is the durable per-window state document (spec §3, §6).
type ChunkRecord struct {
	Index               int              `json:"chunk_number"`
	StartSeconds        float64          `json:"start_time"`
	EndSeconds          float64          `json:"end_time"`
	Status              ChunkStatus      `json:"status"`
	Text                string           `json:"text"`
	WordCount           int              `json:"word_count"`
	StartedAt           *float64         `json:"started_at,omitempty"`
	CompletedAt         *float64         `json:"completed_at,omitempty"`
	AudioChunkFile      string           `json:"audio_chunk_file,omitempty"`
	SpeakerCount        int              `json:"speaker_count,omitempty"`
	SpeakerSegments     []SpeakerSegment `json:"speaker_segments,omitempty"`
	DiarizationFailed   bool             `json:"diarization_failed,omitempty"`
	ErrorMessage        string           `json:"error_message,omitempty"`
	ProducedBy          string           `json:"produced_by,omitempty"`
}

// SpeechSegment is a single ASR-produced span of text (spec §3).
type SpeechSegment struct {
	StartSeconds float64
	EndSeconds   float64
	Text         string
	SpeakerID    string
	Confidence   float64
	HasSpeaker   bool
	HasConfidence bool
}

// WindowTranscript is the per-window ASR output prior to merging (spec §3).
type WindowTranscript struct {
	Index        int
	StartSeconds float64
	EndSeconds   float64
	Text         string
	Segments     []SpeechSegment
}

// Transcript is the final output of the Merger (spec §3, §4.8).
type Transcript struct {
	Segments []SpeechSegment
	Speakers map[string][]SpeechSegment
	FullText string
}

// Gap is an uncovered time range reported by the CoverageVerifier.
type Gap struct {
	StartSeconds    float64
	EndSeconds      float64
	DurationSeconds float64
}

// CoverageReport is the result of CoverageVerifier.Verify (spec §3, §4.6).
type CoverageReport struct {
	SourceDurationSeconds float64
	CoveredSeconds        float64
	CoverageFraction      float64
	Gaps                  []Gap
	TotalChunks           int
	Verified              bool
	MissingSeconds        float64
}

// FailedWindow describes a window left in an error state for the caller
// (spec §7).
type FailedWindow struct {
	Index        int
	ErrorMessage string
}

// Now returns the current wall-clock time as Unix seconds, the unit of
// ChunkRecord's started_at/completed_at fields.
func Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
