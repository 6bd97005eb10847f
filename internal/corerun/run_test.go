package corerun

import (
	"errors"
	"testing"

	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestTranscriptsFromRecordsSkipsNonCompleted(t *testing.T) {
	records := []model.ChunkRecord{
		{Index: 0, StartSeconds: 0, EndSeconds: 30, Status: model.StatusCompleted, Text: "first"},
		{Index: 1, StartSeconds: 30, EndSeconds: 60, Status: model.StatusError, Text: ""},
	}

	transcripts := transcriptsFromRecords(records)
	require.Len(t, transcripts, 1)
	require.Equal(t, "first", transcripts[0].Text)
}

func TestTranscriptsFromRecordsAssignsDominantSpeaker(t *testing.T) {
	records := []model.ChunkRecord{
		{
			Index: 0, StartSeconds: 0, EndSeconds: 30, Status: model.StatusCompleted, Text: "hello",
			SpeakerSegments: []model.SpeakerSegment{
				{StartSeconds: 0, EndSeconds: 5, SpeakerID: "speaker_0"},
				{StartSeconds: 5, EndSeconds: 25, SpeakerID: "speaker_1"},
			},
		},
	}

	transcripts := transcriptsFromRecords(records)
	require.Len(t, transcripts, 1)
	require.Len(t, transcripts[0].Segments, 1)
	require.Equal(t, "speaker_1", transcripts[0].Segments[0].SpeakerID)
	require.True(t, transcripts[0].Segments[0].HasSpeaker)
}

func TestTranscriptsFromRecordsNoSpeakerWhenDiarizationAbsent(t *testing.T) {
	records := []model.ChunkRecord{
		{Index: 0, StartSeconds: 0, EndSeconds: 30, Status: model.StatusCompleted, Text: "hello"},
	}

	transcripts := transcriptsFromRecords(records)
	require.False(t, transcripts[0].Segments[0].HasSpeaker)
}

func TestDominantSpeakerPicksLargestTotalDuration(t *testing.T) {
	segments := []model.SpeakerSegment{
		{StartSeconds: 0, EndSeconds: 5, SpeakerID: "speaker_0"},
		{StartSeconds: 5, EndSeconds: 10, SpeakerID: "speaker_0"},
		{StartSeconds: 10, EndSeconds: 13, SpeakerID: "speaker_1"},
	}

	id, ok := dominantSpeaker(segments)
	require.True(t, ok)
	require.Equal(t, "speaker_0", id)
}

func TestDominantSpeakerEmptyReturnsFalse(t *testing.T) {
	_, ok := dominantSpeaker(nil)
	require.False(t, ok)
}

func TestRunErrorUnwrapsWrappedError(t *testing.T) {
	wrapped := &RunError{Report: model.CoverageReport{CoverageFraction: 0.5}, Wrapped: errBoom}
	require.ErrorIs(t, wrapped, errBoom)
	require.Contains(t, wrapped.Error(), "coverage=0.5000")
}
