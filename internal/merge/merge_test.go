package merge

import (
	"testing"

	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/stretchr/testify/require"
)

func TestRunOrdersBySeparateStart(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{
			Segments: []model.SpeechSegment{
				{StartSeconds: 10, EndSeconds: 20, Text: "second"},
			},
		},
		{
			Segments: []model.SpeechSegment{
				{StartSeconds: 0, EndSeconds: 10, Text: "first"},
			},
		},
	}

	transcript := Run(transcripts)
	require.Equal(t, "first second", transcript.FullText)
	require.Equal(t, 0.0, transcript.Segments[0].StartSeconds)
}

func TestRunAssignsSyntheticSpeakerWhenAbsent(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{Segments: []model.SpeechSegment{{StartSeconds: 0, EndSeconds: 10, Text: "hello"}}},
	}

	transcript := Run(transcripts)
	require.Equal(t, DefaultSpeakerID, transcript.Segments[0].SpeakerID)
	require.Contains(t, transcript.Speakers, DefaultSpeakerID)
}

func TestRunPreservesProvidedSpeakerID(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{Segments: []model.SpeechSegment{{StartSeconds: 0, EndSeconds: 10, Text: "hi", SpeakerID: "speaker_1", HasSpeaker: true}}},
	}

	transcript := Run(transcripts)
	require.Equal(t, "speaker_1", transcript.Segments[0].SpeakerID)
	require.NotContains(t, transcript.Speakers, DefaultSpeakerID)
}
