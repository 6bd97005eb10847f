package dedup

import (
	"testing"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/stretchr/testify/require"
)

func defaultOpts() config.DedupOptions {
	opts := config.DedupOptions{}
	opts.SetDefaults()
	return opts
}

func TestRunExactOverlapScenario1(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{
			Index: 1, StartSeconds: 0, EndSeconds: 30,
			Text: "alpha beta gamma delta epsilon",
			Segments: []model.SpeechSegment{
				{StartSeconds: 0, EndSeconds: 30, Text: "alpha beta gamma delta epsilon"},
			},
		},
		{
			Index: 2, StartSeconds: 25, EndSeconds: 55,
			Text: "delta epsilon zeta eta theta",
			Segments: []model.SpeechSegment{
				{StartSeconds: 25, EndSeconds: 55, Text: "delta epsilon zeta eta theta"},
			},
		},
	}

	out := Run(transcripts, defaultOpts())
	require.Len(t, out, 2)
	require.Equal(t, "alpha beta gamma delta epsilon", out[0].Text)
	require.Equal(t, "zeta eta theta", out[1].Text)
}

func TestRunNoOverlapEmitsUnchanged(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{Index: 1, StartSeconds: 0, EndSeconds: 30, Text: "alpha beta"},
		{Index: 2, StartSeconds: 30, EndSeconds: 60, Text: "gamma delta"},
	}

	out := Run(transcripts, defaultOpts())
	require.Equal(t, "alpha beta", out[0].Text)
	require.Equal(t, "gamma delta", out[1].Text)
}

func TestRunIdempotent(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{Index: 1, StartSeconds: 0, EndSeconds: 30, Text: "alpha beta gamma delta epsilon"},
		{Index: 2, StartSeconds: 25, EndSeconds: 55, Text: "delta epsilon zeta eta theta"},
	}

	opts := defaultOpts()
	once := Run(transcripts, opts)
	twice := Run(once, opts)
	require.Equal(t, once[1].Text, twice[1].Text)
}

func TestRunNoMatchLeavesCurrUnchanged(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{Index: 1, StartSeconds: 0, EndSeconds: 30, Text: "completely unrelated first window content"},
		{Index: 2, StartSeconds: 25, EndSeconds: 55, Text: "totally different second window wording"},
	}

	out := Run(transcripts, defaultOpts())
	require.Equal(t, transcripts[1].Text, out[1].Text)
}

func TestRunSingleWindowPassthrough(t *testing.T) {
	transcripts := []model.WindowTranscript{
		{Index: 1, StartSeconds: 0, EndSeconds: 30, Text: "only window"},
	}

	out := Run(transcripts, defaultOpts())
	require.Len(t, out, 1)
	require.Equal(t, "only window", out[0].Text)
}
