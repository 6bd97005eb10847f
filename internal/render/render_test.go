package render

import (
	"strings"
	"testing"

	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/stretchr/testify/require"
)

func sampleTranscript() model.Transcript {
	return model.Transcript{
		Segments: []model.SpeechSegment{
			{StartSeconds: 0, EndSeconds: 5, SpeakerID: "speaker_0", Text: "hello there"},
			{StartSeconds: 5, EndSeconds: 10.5, SpeakerID: "speaker_1", Text: "general kenobi"},
		},
	}
}

func TestTextWritesTimestampedParagraphs(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Text(&sb, sampleTranscript()))

	out := sb.String()
	require.Contains(t, out, "00:00:00 -> 00:00:05")
	require.Contains(t, out, "speaker_0")
	require.Contains(t, out, "hello there")
	require.Contains(t, out, "00:00:05 -> 00:00:10")
	require.Contains(t, out, "general kenobi")
}

func TestWebVTTWritesCuesWithSpeaker(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WebVTT(&sb, sampleTranscript(), WebVTTOptions{}))

	out := sb.String()
	require.True(t, strings.HasPrefix(out, "WEBVTT\n"))
	require.Contains(t, out, "00:00:00.000 --> 00:00:05.000")
	require.Contains(t, out, "<v speaker_0>(speaker_0) hello there")
}

func TestWebVTTOmitsSpeakerWhenConfigured(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WebVTT(&sb, sampleTranscript(), WebVTTOptions{OmitSpeaker: true}))

	out := sb.String()
	require.NotContains(t, out, "<v")
	require.Contains(t, out, "hello there")
}

func TestWebVTTEscapesHTML(t *testing.T) {
	transcript := model.Transcript{
		Segments: []model.SpeechSegment{
			{StartSeconds: 0, EndSeconds: 1, SpeakerID: "speaker_0", Text: "<script>alert(1)</script>"},
		},
	}

	var sb strings.Builder
	require.NoError(t, WebVTT(&sb, transcript, WebVTTOptions{}))

	out := sb.String()
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
}
