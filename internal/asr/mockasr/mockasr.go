// Package mockasr is a testify/mock.Mock-based ASRAdapter test double, in
// the style the teacher uses for its MockAPIClient in call/transcriber_test.go
// (an `.On(...)` / `.AssertExpectations(t)` mock rather than a hand-rolled
// fake), so scheduler tests can assert call counts and argument shapes
// without touching cgo or a network service.
package mockasr

import (
	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/stretchr/testify/mock"
)

// Adapter is a mock.Mock-backed asr.Adapter.
type Adapter struct {
	mock.Mock
}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Transcribe(samples []float32, modelID string, windowIndex int, startSeconds, endSeconds float64) (model.WindowTranscript, error) {
	args := a.Called(samples, modelID, windowIndex, startSeconds, endSeconds)
	transcript, _ := args.Get(0).(model.WindowTranscript)
	return transcript, args.Error(1)
}

func (a *Adapter) ReleaseMemory() error {
	args := a.Called()
	return args.Error(0)
}
