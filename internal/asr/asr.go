// Package asr defines the ASRAdapter capability (spec §4.5): the external
// collaborator the scheduler dispatches audio windows to. Concrete
// backends (whispercpp, azureasr, rpcasr, mockasr) are independent
// implementations of this interface, not a class hierarchy, per the
// re-architecture notes in spec §9.
package asr

import "github.com/galak06/chunked-transcriber/internal/model"

// Adapter is the fixed capability set every ASR backend implements.
type Adapter interface {
	// Transcribe maps an audio slice to a WindowTranscript. Implementations
	// must return an *errs.AdapterError on failure so the scheduler can
	// classify transient vs. fatal vs. empty-output without type-switching
	// over arbitrary error values.
	Transcribe(samples []float32, modelID string, windowIndex int, startSeconds, endSeconds float64) (model.WindowTranscript, error)

	// ReleaseMemory is idempotent and must not invalidate already-loaded
	// models; the scheduler calls it between retry attempts and on a
	// periodic cleanup cadence (spec §4.4).
	ReleaseMemory() error
}
