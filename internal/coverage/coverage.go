// Package coverage implements the CoverageVerifier capability (spec §4.6):
// certifying that the set of scheduled windows covers the source audio to
// within a configured tolerance. Grounded on the teacher's retry/threshold
// style (config-driven pass/fail, no silent partial success).
package coverage

import (
	"fmt"
	"sort"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/model"
)

// Incomplete carries a Report that failed verification; corerun.Run
// returns it (wrapped in a RunError) instead of merging. Verify itself
// returns only the Report.
type Incomplete struct {
	Report model.CoverageReport
}

func (e *Incomplete) Error() string {
	return fmt.Sprintf("coverage incomplete: %.4f%% covered (%d gap(s))", e.Report.CoverageFraction*100, len(e.Report.Gaps))
}

// Verify walks completed/processing chunk records sorted by start time,
// accumulating covered duration and gaps, per spec §4.6. Records in the
// error state are excluded: spec §7 treats them as coverage gap
// contributors.
func Verify(records []model.ChunkRecord, durationSeconds float64, opts config.VerifierOptions) model.CoverageReport {
	considered := make([]model.ChunkRecord, 0, len(records))
	for _, r := range records {
		if r.Status == model.StatusCompleted || r.Status == model.StatusProcessing {
			considered = append(considered, r)
		}
	}
	sort.Slice(considered, func(i, j int) bool {
		return considered[i].StartSeconds < considered[j].StartSeconds
	})

	report := model.CoverageReport{
		SourceDurationSeconds: durationSeconds,
		TotalChunks:           len(records),
	}

	cursor := 0.0
	for _, r := range considered {
		if r.StartSeconds-cursor > opts.GapToleranceSeconds {
			report.Gaps = append(report.Gaps, model.Gap{
				StartSeconds:    cursor,
				EndSeconds:      r.StartSeconds,
				DurationSeconds: r.StartSeconds - cursor,
			})
		}
		if r.EndSeconds > cursor {
			report.CoveredSeconds += r.EndSeconds - max(cursor, r.StartSeconds)
			cursor = r.EndSeconds
		}
	}

	if durationSeconds-cursor > opts.GapToleranceSeconds {
		report.Gaps = append(report.Gaps, model.Gap{
			StartSeconds:    cursor,
			EndSeconds:      durationSeconds,
			DurationSeconds: durationSeconds - cursor,
		})
	}

	if durationSeconds > 0 {
		report.CoverageFraction = report.CoveredSeconds / durationSeconds
	}
	report.MissingSeconds = durationSeconds - report.CoveredSeconds
	report.Verified = report.CoverageFraction >= opts.CoverageThreshold && len(report.Gaps) == 0

	return report
}
