package coverage

import (
	"testing"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/stretchr/testify/require"
)

func defaultOpts() config.VerifierOptions {
	opts := config.VerifierOptions{}
	opts.SetDefaults()
	return opts
}

func TestVerifyFullCoverage(t *testing.T) {
	records := []model.ChunkRecord{
		{Index: 1, StartSeconds: 0, EndSeconds: 30, Status: model.StatusCompleted},
		{Index: 2, StartSeconds: 25, EndSeconds: 55, Status: model.StatusCompleted},
	}

	report := Verify(records, 55, defaultOpts())
	require.True(t, report.Verified)
	require.Empty(t, report.Gaps)
	require.InDelta(t, 1.0, report.CoverageFraction, 1e-9)
}

func TestVerifyGapExceedsTolerance(t *testing.T) {
	records := []model.ChunkRecord{
		{Index: 1, StartSeconds: 0, EndSeconds: 60, Status: model.StatusCompleted},
		{Index: 2, StartSeconds: 60, EndSeconds: 120, Status: model.StatusError},
	}

	report := Verify(records, 120, defaultOpts())
	require.False(t, report.Verified)
	require.Len(t, report.Gaps, 1)
	require.InDelta(t, 60.0, report.Gaps[0].DurationSeconds, 1e-9)
}

func TestVerifyGapExactlyAtTolerancePasses(t *testing.T) {
	opts := defaultOpts()
	opts.GapToleranceSeconds = 0.1

	records := []model.ChunkRecord{
		{Index: 1, StartSeconds: 0, EndSeconds: 10, Status: model.StatusCompleted},
		{Index: 2, StartSeconds: 10.1, EndSeconds: 20, Status: model.StatusCompleted},
	}

	report := Verify(records, 20, opts)
	require.Empty(t, report.Gaps)
}

func TestVerifyIdempotent(t *testing.T) {
	records := []model.ChunkRecord{
		{Index: 1, StartSeconds: 0, EndSeconds: 55, Status: model.StatusCompleted},
	}

	opts := defaultOpts()
	first := Verify(records, 55, opts)
	second := Verify(records, 55, opts)
	require.Equal(t, first, second)
}
