package mockasr

import (
	"errors"
	"testing"

	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/stretchr/testify/require"
)

func TestTranscribeReturnsConfiguredResult(t *testing.T) {
	adapter := New()
	adapter.On("Transcribe", []float32{0.1}, "base", 0, 0.0, 30.0).
		Return(model.WindowTranscript{Text: "configured"}, nil)

	transcript, err := adapter.Transcribe([]float32{0.1}, "base", 0, 0, 30)
	require.NoError(t, err)
	require.Equal(t, "configured", transcript.Text)
	adapter.AssertExpectations(t)
}

func TestTranscribeReturnsConfiguredError(t *testing.T) {
	adapter := New()
	adapter.On("Transcribe", []float32{0.1}, "base", 0, 0.0, 30.0).
		Return(model.WindowTranscript{}, errors.New("boom"))

	_, err := adapter.Transcribe([]float32{0.1}, "base", 0, 0, 30)
	require.EqualError(t, err, "boom")
}

func TestReleaseMemoryDelegatesToMock(t *testing.T) {
	adapter := New()
	adapter.On("ReleaseMemory").Return(nil)

	require.NoError(t, adapter.ReleaseMemory())
	adapter.AssertExpectations(t)
}
