// Package corerun wires the chunked transcription core's components
// together behind the single `run` operation named in spec §7: windowing,
// scheduling, coverage verification, deduplication, and merge, returning
// either a Transcript or a structured RunError carrying the CoverageReport
// and failed windows.
package corerun

import (
	"context"
	"fmt"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/asr"
	"github.com/galak06/chunked-transcriber/internal/audio"
	"github.com/galak06/chunked-transcriber/internal/chunkstore"
	"github.com/galak06/chunked-transcriber/internal/cleanup"
	"github.com/galak06/chunked-transcriber/internal/coverage"
	"github.com/galak06/chunked-transcriber/internal/dedup"
	"github.com/galak06/chunked-transcriber/internal/diarizer"
	"github.com/galak06/chunked-transcriber/internal/merge"
	"github.com/galak06/chunked-transcriber/internal/model"
	"github.com/galak06/chunked-transcriber/internal/runctx"
	"github.com/galak06/chunked-transcriber/internal/scheduler"
	"github.com/galak06/chunked-transcriber/internal/windower"
)

// RunError is returned when the run fails after scheduling: either
// coverage verification failed, or the scheduler itself returned an error
// (cancellation). It
// carries enough structured detail for the caller to report failed
// windows without re-reading the ChunkStore (spec §7's "structured error
// carrying the CoverageReport and the list of failed windows").
type RunError struct {
	Report  model.CoverageReport
	Failed  []model.FailedWindow
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run failed: %v (coverage=%.4f, failed_windows=%d)", e.Wrapped, e.Report.CoverageFraction, len(e.Failed))
}

func (e *RunError) Unwrap() error { return e.Wrapped }

// Deps bundles the external collaborators a run needs; ASR is required,
// Diarizer and Sink are optional (nil disables diarization / progress
// reporting respectively).
type Deps struct {
	ASR      asr.Adapter
	Diarizer diarizer.Adapter
	Sink     scheduler.ProgressSink
}

// Run executes one end-to-end transcription: open the source, compute
// windows, schedule them, verify coverage, deduplicate overlaps, and
// merge. rc supplies the run's filesystem layout (state dir, audio-slice
// scratch dir, output dir).
func Run(ctx context.Context, cfg config.RunConfig, rc runctx.Context, deps Deps) (model.Transcript, error) {
	cfg.SetDefaults()
	if err := cfg.IsValid(); err != nil {
		return model.Transcript{}, fmt.Errorf("invalid run config: %w", err)
	}

	cleanupCoordinator := cleanup.New(rc.AudioSliceDir, rc.StateDir, rc.OutputDir, cfg.Cleanup)
	cleanupCoordinator.BeforeRun()

	source, err := audio.NewFFmpegSource(cfg.SourcePath, rc.AudioSliceDir)
	if err != nil {
		return model.Transcript{}, fmt.Errorf("failed to open source audio: %w", err)
	}

	specs, err := windower.Windows(source.DurationSeconds(), cfg.Windowing)
	if err != nil {
		return model.Transcript{}, fmt.Errorf("failed to compute windows: %w", err)
	}

	store, err := chunkstore.New(rc.ChunksDir())
	if err != nil {
		return model.Transcript{}, fmt.Errorf("failed to open chunk store: %w", err)
	}

	diarizerAdapter := deps.Diarizer
	if !cfg.DiarizationEnabled {
		diarizerAdapter = nil
	}

	sched := &scheduler.Scheduler{
		Source:   source,
		Store:    store,
		ASR:      deps.ASR,
		Diarizer: diarizerAdapter,
		ModelID:  cfg.ModelID,
		Opts:     cfg.Scheduler,
		Sink:     deps.Sink,
		Cleanup:  cleanupCoordinator.Periodic,
	}

	failed, runErr := sched.Run(ctx, specs)

	records, err := store.List()
	if err != nil {
		return model.Transcript{}, fmt.Errorf("failed to list chunk store after scheduling: %w", err)
	}

	report := coverage.Verify(records, source.DurationSeconds(), cfg.Verifier)

	if !report.Verified {
		return model.Transcript{}, &RunError{Report: report, Failed: failed, Wrapped: &coverage.Incomplete{Report: report}}
	}
	if runErr != nil {
		return model.Transcript{}, &RunError{Report: report, Failed: failed, Wrapped: runErr}
	}

	transcripts := transcriptsFromRecords(records)
	deduped := dedup.Run(transcripts, cfg.Dedup)
	transcript := merge.Run(deduped)

	cleanupCoordinator.AfterRun()

	return transcript, nil
}

// transcriptsFromRecords materializes WindowTranscripts from completed
// ChunkRecords, sorted by start time; error-state records contribute no
// segments (spec §9's open-question resolution: "no contribution"). The
// on-disk ChunkRecord carries a single flat Text per window (spec §6) and
// a separate, independently-timed SpeakerSegments list from the diarizer,
// so each window becomes exactly one SpeechSegment; its speaker_id is the
// speaker with the largest total diarized duration in the window, when
// diarization succeeded.
func transcriptsFromRecords(records []model.ChunkRecord) []model.WindowTranscript {
	var out []model.WindowTranscript
	for _, rec := range records {
		if rec.Status != model.StatusCompleted {
			continue
		}

		seg := model.SpeechSegment{
			StartSeconds: rec.StartSeconds,
			EndSeconds:   rec.EndSeconds,
			Text:         rec.Text,
		}
		if speakerID, ok := dominantSpeaker(rec.SpeakerSegments); ok {
			seg.SpeakerID = speakerID
			seg.HasSpeaker = true
		}

		out = append(out, model.WindowTranscript{
			Index:        rec.Index,
			StartSeconds: rec.StartSeconds,
			EndSeconds:   rec.EndSeconds,
			Text:         rec.Text,
			Segments:     []model.SpeechSegment{seg},
		})
	}
	return out
}

// dominantSpeaker returns the speaker_id with the largest total duration
// among segments, or false if segments is empty.
func dominantSpeaker(segments []model.SpeakerSegment) (string, bool) {
	if len(segments) == 0 {
		return "", false
	}

	totals := make(map[string]float64, len(segments))
	for _, seg := range segments {
		totals[seg.SpeakerID] += seg.EndSeconds - seg.StartSeconds
	}

	best := ""
	bestDuration := -1.0
	for id, duration := range totals {
		if duration > bestDuration {
			best = id
			bestDuration = duration
		}
	}
	return best, true
}
