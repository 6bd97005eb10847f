// Package scheduler implements the WindowScheduler capability (spec §4.4):
// driving every WindowSpec through create→slice→transcribe→(diarize)→record,
// with retry/backoff, periodic resource cleanup, bounded concurrency, and
// cooperative cancellation. Grounded on the teacher's publishTranscription
// retry/backoff idiom (call/utils.go) generalized from a fixed 5-attempt
// HTTP upload loop into a configurable per-window ASR retry loop, and on
// spec §9's replacement of implicit orchestrator cycles with acyclic
// construction: the scheduler holds no reference back to its caller and
// reports progress only through the narrow ProgressSink interface below.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/asr"
	"github.com/galak06/chunked-transcriber/internal/audio"
	"github.com/galak06/chunked-transcriber/internal/chunkstore"
	"github.com/galak06/chunked-transcriber/internal/diarizer"
	"github.com/galak06/chunked-transcriber/internal/errs"
	"github.com/galak06/chunked-transcriber/internal/model"
)

// ProgressSink is the narrow observer interface the scheduler reports
// through; it never holds a reference back to whatever owns the sink
// (spec §9's "implicit cyclic references" re-architecture note).
type ProgressSink interface {
	WindowStarted(index int)
	WindowCompleted(index int)
	WindowFailed(index int, reason string)
}

// NoopSink discards every event; the default when the caller doesn't care.
type NoopSink struct{}

func (NoopSink) WindowStarted(int)        {}
func (NoopSink) WindowCompleted(int)      {}
func (NoopSink) WindowFailed(int, string) {}

// CleanupHook is invoked every CleanupPeriod windows (spec §4.4), alongside
// the scheduler's own unconditional ASR.ReleaseMemory() call; satisfied by
// internal/cleanup.Coordinator.Periodic.
type CleanupHook func()

// Scheduler drives WindowSpecs to terminal state against a fixed set of
// collaborators, constructed once per run.
type Scheduler struct {
	Source   audio.Source
	Store    *chunkstore.Store
	ASR      asr.Adapter
	Diarizer diarizer.Adapter // nil if diarization is disabled for the run
	ModelID  string
	Opts     config.SchedulerOptions
	Sink     ProgressSink
	Cleanup  CleanupHook // nil if no periodic cleanup is wired
}

// Run drives every window in specs to a terminal ChunkRecord state,
// honoring MaxConcurrency, retry/backoff, and cooperative cancellation. The
// terminal records are left for the caller to read back from the Store;
// Run itself returns the list of windows that ended in error.
func (s *Scheduler) Run(ctx context.Context, specs []model.WindowSpec) ([]model.FailedWindow, error) {
	if s.Sink == nil {
		s.Sink = NoopSink{}
	}

	concurrency := s.Opts.MaxConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failed   []model.FailedWindow
		attempts int64
		cancelled bool
	)

	for _, spec := range specs {
		select {
		case <-ctx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(spec model.WindowSpec) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.runWindow(ctx, spec); err != nil {
				mu.Lock()
				failed = append(failed, model.FailedWindow{Index: spec.Index, ErrorMessage: err.Error()})
				mu.Unlock()
			}

			mu.Lock()
			attempts++
			n := attempts
			mu.Unlock()

			// Per spec §4.4, release_memory() is called every CleanupPeriod
			// windows unconditionally, independent of whether any retry
			// happened along the way.
			if s.Opts.CleanupPeriod > 0 && n%int64(s.Opts.CleanupPeriod) == 0 {
				if err := s.ASR.ReleaseMemory(); err != nil {
					slog.Warn("release_memory failed on periodic cleanup", slog.String("err", err.Error()))
				}
				if s.Cleanup != nil {
					s.Cleanup()
				}
			}
		}(spec)
	}

	wg.Wait()

	if cancelled {
		return failed, errs.Cancelled
	}
	return failed, nil
}

// runWindow drives a single WindowSpec through its lifecycle (spec §4.4).
func (s *Scheduler) runWindow(ctx context.Context, spec model.WindowSpec) error {
	s.Sink.WindowStarted(spec.Index)

	rec, err := s.Store.Create(spec)
	if err != nil {
		return fmt.Errorf("failed to create chunk record: %w", err)
	}

	samples, err := s.Source.Slice(spec.StartSeconds, spec.EndSeconds)
	if err != nil {
		return s.fail(rec, "empty_slice: "+err.Error())
	}
	if len(samples) == 0 {
		return s.fail(rec, "empty_slice")
	}

	rec.Status = model.StatusProcessing
	startedAt := model.Now()
	rec.StartedAt = &startedAt
	if err := s.Store.Update(rec); err != nil {
		return fmt.Errorf("failed to persist processing state: %w", err)
	}

	transcript, err := s.transcribeWithRetry(ctx, spec, samples)
	if err != nil {
		if errors.Is(err, errs.Cancelled) {
			return s.fail(rec, "cancelled")
		}
		return s.fail(rec, err.Error())
	}

	rec.Text = transcript.Text
	rec.WordCount = len(strings.Fields(transcript.Text))
	rec.ProducedBy = fmt.Sprintf("window-%d", spec.Index)

	if s.Diarizer != nil {
		segments, dErr := s.Diarizer.Diarize(samples, spec.StartSeconds, spec.EndSeconds)
		if dErr != nil {
			slog.Warn("diarization failed, completing without speaker attribution",
				slog.Int("window", spec.Index), slog.String("err", dErr.Error()))
			rec.DiarizationFailed = true
			rec.SpeakerSegments = nil
			rec.SpeakerCount = 0
		} else {
			rec.SpeakerSegments = segments
			rec.SpeakerCount = countSpeakers(segments)
		}
	}

	rec.Status = model.StatusCompleted
	completedAt := model.Now()
	rec.CompletedAt = &completedAt
	if err := s.Store.Update(rec); err != nil {
		return fmt.Errorf("failed to persist completed state: %w", err)
	}

	s.Sink.WindowCompleted(spec.Index)
	return nil
}

// transcribeWithRetry invokes ASR.Transcribe with exponential backoff
// capped at BackoffCapSeconds, releasing adapter memory between attempts,
// per spec §4.4 step 4. Each attempt also respects PerWindowTimeoutSeconds
// and the run's cancellation context.
func (s *Scheduler) transcribeWithRetry(ctx context.Context, spec model.WindowSpec, samples []float32) (model.WindowTranscript, error) {
	var lastErr error

	for attempt := 1; attempt <= s.Opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return model.WindowTranscript{}, errs.Cancelled
		default:
		}

		if attempt > 1 {
			backoff := backoffFor(attempt-1, s.Opts.BackoffCapSeconds)
			if err := s.ASR.ReleaseMemory(); err != nil {
				slog.Warn("release_memory failed between retries", slog.String("err", err.Error()))
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return model.WindowTranscript{}, errs.Cancelled
			}
		}

		transcript, err := s.transcribeOnce(ctx, spec, samples)
		if err == nil {
			if strings.TrimSpace(transcript.Text) == "" {
				lastErr = fmt.Errorf("empty or whitespace-only transcription")
				continue
			}
			return transcript, nil
		}

		var adapterErr *errs.AdapterError
		if errors.As(err, &adapterErr) && adapterErr.Kind == errs.AdapterErrorFatal {
			return model.WindowTranscript{}, err
		}

		lastErr = err
	}

	return model.WindowTranscript{}, fmt.Errorf("transcription_failed_after_%d_attempts: %w", s.Opts.MaxAttempts, lastErr)
}

func (s *Scheduler) transcribeOnce(ctx context.Context, spec model.WindowSpec, samples []float32) (model.WindowTranscript, error) {
	timeout := time.Duration(s.Opts.PerWindowTimeoutSeconds * float64(time.Second))
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		transcript model.WindowTranscript
		err        error
	}
	resultCh := make(chan result, 1)

	go func() {
		transcript, err := s.ASR.Transcribe(samples, s.ModelID, spec.Index, spec.StartSeconds, spec.EndSeconds)
		resultCh <- result{transcript: transcript, err: err}
	}()

	select {
	case r := <-resultCh:
		return r.transcript, r.err
	case <-callCtx.Done():
		return model.WindowTranscript{}, errs.NewTransientError(fmt.Errorf("adapter call timed out after %s", timeout))
	}
}

func backoffFor(attemptsSoFar int, capSeconds float64) time.Duration {
	seconds := math.Min(math.Pow(2, float64(attemptsSoFar-1)), capSeconds)
	return time.Duration(seconds * float64(time.Second))
}

func (s *Scheduler) fail(rec model.ChunkRecord, reason string) error {
	rec.Status = model.StatusError
	rec.ErrorMessage = reason
	completedAt := model.Now()
	rec.CompletedAt = &completedAt

	if err := s.Store.Update(rec); err != nil {
		slog.Error("failed to persist error state", slog.Int("window", rec.Index), slog.String("err", err.Error()))
	}

	s.Sink.WindowFailed(rec.Index, reason)
	return fmt.Errorf("%s", reason)
}

func countSpeakers(segments []model.SpeakerSegment) int {
	seen := make(map[string]struct{}, len(segments))
	for _, seg := range segments {
		seen[seg.SpeakerID] = struct{}{}
	}
	return len(seen)
}
