// Package config defines the run configuration surface for the chunked
// transcription core: windowing policy, scheduler, verifier, deduplicator
// and cleanup options (spec §6). Its shape mirrors the teacher's
// CallTranscriberConfig: a plain struct with SetDefaults/IsValid and
// FromEnv/ToEnv round-tripping for handing configuration to a spawned
// process.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WindowPolicy selects the windowing strategy (spec §4.1).
type WindowPolicy string

const (
	PolicyFixed       WindowPolicy = "fixed"
	PolicyOverlapping WindowPolicy = "overlapping"
)

func (p WindowPolicy) IsValid() bool {
	switch p {
	case PolicyFixed, PolicyOverlapping:
		return true
	default:
		return false
	}
}

// defaults, mirroring spec §6/§8.
const (
	WindowSecondsDefault          = 30.0
	StrideOverlapSecondsDefault   = 5.0
	MinWindowSecondsDefault       = 0.0
	MaxAttemptsDefault            = 3
	BackoffCapSecondsDefault      = 30.0
	PerWindowTimeoutSecondsDefault = 120.0
	CleanupPeriodDefault          = 5
	MaxConcurrencyDefault         = 1
	CoverageThresholdDefault      = 0.999
	GapToleranceSecondsDefault    = 0.1
	MinOverlapCharsDefault        = 6
	SimilarityThresholdDefault    = 0.7
	FlexSimilarityThresholdDefault = 0.6
	MaxOutputFilesDefault         = 5
)

// WindowingOptions configures the Windower (spec §4.1, §6).
type WindowingOptions struct {
	Policy               WindowPolicy
	WindowSeconds         float64
	StrideOverlapSeconds  float64
	MinWindowSeconds      float64
}

func (o *WindowingOptions) SetDefaults() {
	if o.Policy == "" {
		o.Policy = PolicyFixed
	}
	if o.WindowSeconds == 0 {
		o.WindowSeconds = WindowSecondsDefault
	}
	if o.Policy == PolicyOverlapping && o.StrideOverlapSeconds == 0 {
		o.StrideOverlapSeconds = StrideOverlapSecondsDefault
	}
}

func (o WindowingOptions) IsValid() error {
	if !o.Policy.IsValid() {
		return fmt.Errorf("Policy value is not valid")
	}
	if o.WindowSeconds <= 0 {
		return fmt.Errorf("WindowSeconds should be a positive number")
	}
	if o.Policy == PolicyOverlapping {
		if o.StrideOverlapSeconds < 0 {
			return fmt.Errorf("StrideOverlapSeconds should not be negative")
		}
		if o.StrideOverlapSeconds >= o.WindowSeconds {
			return fmt.Errorf("StrideOverlapSeconds should be less than WindowSeconds")
		}
		if o.MinWindowSeconds < 0 {
			return fmt.Errorf("MinWindowSeconds should not be negative")
		}
	}
	return nil
}

// SchedulerOptions configures the WindowScheduler (spec §4.4, §6).
type SchedulerOptions struct {
	MaxAttempts              int
	BackoffCapSeconds        float64
	PerWindowTimeoutSeconds  float64
	CleanupPeriod            int
	MaxConcurrency           int
}

func (o *SchedulerOptions) SetDefaults() {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = MaxAttemptsDefault
	}
	if o.BackoffCapSeconds == 0 {
		o.BackoffCapSeconds = BackoffCapSecondsDefault
	}
	if o.PerWindowTimeoutSeconds == 0 {
		o.PerWindowTimeoutSeconds = PerWindowTimeoutSecondsDefault
	}
	if o.CleanupPeriod == 0 {
		o.CleanupPeriod = CleanupPeriodDefault
	}
	if o.MaxConcurrency == 0 {
		o.MaxConcurrency = MaxConcurrencyDefault
	}
}

func (o SchedulerOptions) IsValid() error {
	if o.MaxAttempts < 1 {
		return fmt.Errorf("MaxAttempts should be at least 1")
	}
	if o.BackoffCapSeconds <= 0 {
		return fmt.Errorf("BackoffCapSeconds should be a positive number")
	}
	if o.PerWindowTimeoutSeconds <= 0 {
		return fmt.Errorf("PerWindowTimeoutSeconds should be a positive number")
	}
	if o.CleanupPeriod < 1 {
		return fmt.Errorf("CleanupPeriod should be at least 1")
	}
	if o.MaxConcurrency < 1 {
		return fmt.Errorf("MaxConcurrency should be at least 1")
	}
	return nil
}

// VerifierOptions configures the CoverageVerifier (spec §4.6, §6).
type VerifierOptions struct {
	CoverageThreshold  float64
	GapToleranceSeconds float64
}

func (o *VerifierOptions) SetDefaults() {
	if o.CoverageThreshold == 0 {
		o.CoverageThreshold = CoverageThresholdDefault
	}
	if o.GapToleranceSeconds == 0 {
		o.GapToleranceSeconds = GapToleranceSecondsDefault
	}
}

func (o VerifierOptions) IsValid() error {
	if o.CoverageThreshold <= 0 || o.CoverageThreshold > 1 {
		return fmt.Errorf("CoverageThreshold should be in the range (0, 1]")
	}
	if o.GapToleranceSeconds < 0 {
		return fmt.Errorf("GapToleranceSeconds should not be negative")
	}
	return nil
}

// DedupOptions configures the OverlapDeduplicator (spec §4.7, §6).
type DedupOptions struct {
	MinOverlapChars         int
	SimilarityThreshold     float64
	FlexSimilarityThreshold float64
	StopPhrases             map[string]struct{}
}

func (o *DedupOptions) SetDefaults() {
	if o.MinOverlapChars == 0 {
		o.MinOverlapChars = MinOverlapCharsDefault
	}
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = SimilarityThresholdDefault
	}
	if o.FlexSimilarityThreshold == 0 {
		o.FlexSimilarityThreshold = FlexSimilarityThresholdDefault
	}
	if o.StopPhrases == nil {
		o.StopPhrases = defaultStopPhrases()
	}
}

func defaultStopPhrases() map[string]struct{} {
	words := []string{"the", "a", "an", "and", "but", "so", "um", "uh", "like", "you know"}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func (o DedupOptions) IsValid() error {
	if o.MinOverlapChars < 1 {
		return fmt.Errorf("MinOverlapChars should be at least 1")
	}
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("SimilarityThreshold should be in the range [0, 1]")
	}
	if o.FlexSimilarityThreshold < 0 || o.FlexSimilarityThreshold > 1 {
		return fmt.Errorf("FlexSimilarityThreshold should be in the range [0, 1]")
	}
	return nil
}

// CleanupOptions configures the CleanupCoordinator (spec §4.9, §6).
type CleanupOptions struct {
	MaxOutputFiles    int
	ClearStateBeforeRun bool
}

func (o *CleanupOptions) SetDefaults() {
	if o.MaxOutputFiles == 0 {
		o.MaxOutputFiles = MaxOutputFilesDefault
	}
}

func (o CleanupOptions) IsValid() error {
	if o.MaxOutputFiles < 0 {
		return fmt.Errorf("MaxOutputFiles should not be negative")
	}
	return nil
}

// RunConfig is the top-level configuration for a single transcription run.
type RunConfig struct {
	SourcePath string
	ModelID    string

	Windowing WindowingOptions
	Scheduler SchedulerOptions
	Verifier  VerifierOptions
	Dedup     DedupOptions
	Cleanup   CleanupOptions

	DiarizationEnabled bool
}

func (cfg *RunConfig) SetDefaults() {
	cfg.Windowing.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.Verifier.SetDefaults()
	cfg.Dedup.SetDefaults()
	cfg.Cleanup.SetDefaults()
}

func (cfg RunConfig) IsValid() error {
	if cfg.SourcePath == "" {
		return fmt.Errorf("SourcePath cannot be empty")
	}
	if cfg.ModelID == "" {
		return fmt.Errorf("ModelID cannot be empty")
	}
	if err := cfg.Windowing.IsValid(); err != nil {
		return fmt.Errorf("invalid windowing options: %w", err)
	}
	if err := cfg.Scheduler.IsValid(); err != nil {
		return fmt.Errorf("invalid scheduler options: %w", err)
	}
	if err := cfg.Verifier.IsValid(); err != nil {
		return fmt.Errorf("invalid verifier options: %w", err)
	}
	if err := cfg.Dedup.IsValid(); err != nil {
		return fmt.Errorf("invalid dedup options: %w", err)
	}
	if err := cfg.Cleanup.IsValid(); err != nil {
		return fmt.Errorf("invalid cleanup options: %w", err)
	}
	return nil
}

// ToEnv renders the config as NAME=value pairs, mirroring the teacher's
// CallTranscriberConfig.ToEnv used to hand configuration to a spawned
// container process.
func (cfg RunConfig) ToEnv() []string {
	return []string{
		fmt.Sprintf("SOURCE_PATH=%s", cfg.SourcePath),
		fmt.Sprintf("MODEL_ID=%s", cfg.ModelID),
		fmt.Sprintf("WINDOW_POLICY=%s", cfg.Windowing.Policy),
		fmt.Sprintf("WINDOW_SECONDS=%g", cfg.Windowing.WindowSeconds),
		fmt.Sprintf("STRIDE_OVERLAP_SECONDS=%g", cfg.Windowing.StrideOverlapSeconds),
		fmt.Sprintf("MIN_WINDOW_SECONDS=%g", cfg.Windowing.MinWindowSeconds),
		fmt.Sprintf("MAX_ATTEMPTS=%d", cfg.Scheduler.MaxAttempts),
		fmt.Sprintf("BACKOFF_CAP_SECONDS=%g", cfg.Scheduler.BackoffCapSeconds),
		fmt.Sprintf("PER_WINDOW_TIMEOUT_SECONDS=%g", cfg.Scheduler.PerWindowTimeoutSeconds),
		fmt.Sprintf("CLEANUP_PERIOD=%d", cfg.Scheduler.CleanupPeriod),
		fmt.Sprintf("MAX_CONCURRENCY=%d", cfg.Scheduler.MaxConcurrency),
		fmt.Sprintf("COVERAGE_THRESHOLD=%g", cfg.Verifier.CoverageThreshold),
		fmt.Sprintf("GAP_TOLERANCE_SECONDS=%g", cfg.Verifier.GapToleranceSeconds),
		fmt.Sprintf("MIN_OVERLAP_CHARS=%d", cfg.Dedup.MinOverlapChars),
		fmt.Sprintf("SIMILARITY_THRESHOLD=%g", cfg.Dedup.SimilarityThreshold),
		fmt.Sprintf("FLEX_SIMILARITY_THRESHOLD=%g", cfg.Dedup.FlexSimilarityThreshold),
		fmt.Sprintf("MAX_OUTPUT_FILES=%d", cfg.Cleanup.MaxOutputFiles),
		fmt.Sprintf("CLEAR_STATE_BEFORE_RUN=%t", cfg.Cleanup.ClearStateBeforeRun),
		fmt.Sprintf("DIARIZATION_ENABLED=%t", cfg.DiarizationEnabled),
	}
}

func FromEnv() (RunConfig, error) {
	var cfg RunConfig
	cfg.SourcePath = os.Getenv("SOURCE_PATH")
	cfg.ModelID = os.Getenv("MODEL_ID")

	if val := os.Getenv("WINDOW_POLICY"); val != "" {
		cfg.Windowing.Policy = WindowPolicy(val)
	}
	cfg.Windowing.WindowSeconds, _ = strconv.ParseFloat(os.Getenv("WINDOW_SECONDS"), 64)
	cfg.Windowing.StrideOverlapSeconds, _ = strconv.ParseFloat(os.Getenv("STRIDE_OVERLAP_SECONDS"), 64)
	cfg.Windowing.MinWindowSeconds, _ = strconv.ParseFloat(os.Getenv("MIN_WINDOW_SECONDS"), 64)

	cfg.Scheduler.MaxAttempts, _ = strconv.Atoi(os.Getenv("MAX_ATTEMPTS"))
	cfg.Scheduler.BackoffCapSeconds, _ = strconv.ParseFloat(os.Getenv("BACKOFF_CAP_SECONDS"), 64)
	cfg.Scheduler.PerWindowTimeoutSeconds, _ = strconv.ParseFloat(os.Getenv("PER_WINDOW_TIMEOUT_SECONDS"), 64)
	cfg.Scheduler.CleanupPeriod, _ = strconv.Atoi(os.Getenv("CLEANUP_PERIOD"))
	cfg.Scheduler.MaxConcurrency, _ = strconv.Atoi(os.Getenv("MAX_CONCURRENCY"))

	cfg.Verifier.CoverageThreshold, _ = strconv.ParseFloat(os.Getenv("COVERAGE_THRESHOLD"), 64)
	cfg.Verifier.GapToleranceSeconds, _ = strconv.ParseFloat(os.Getenv("GAP_TOLERANCE_SECONDS"), 64)

	cfg.Dedup.MinOverlapChars, _ = strconv.Atoi(os.Getenv("MIN_OVERLAP_CHARS"))
	cfg.Dedup.SimilarityThreshold, _ = strconv.ParseFloat(os.Getenv("SIMILARITY_THRESHOLD"), 64)
	cfg.Dedup.FlexSimilarityThreshold, _ = strconv.ParseFloat(os.Getenv("FLEX_SIMILARITY_THRESHOLD"), 64)
	if phrases := os.Getenv("STOP_PHRASES"); phrases != "" {
		cfg.Dedup.StopPhrases = make(map[string]struct{})
		for _, p := range strings.Split(phrases, ",") {
			cfg.Dedup.StopPhrases[strings.TrimSpace(p)] = struct{}{}
		}
	}

	cfg.Cleanup.MaxOutputFiles, _ = strconv.Atoi(os.Getenv("MAX_OUTPUT_FILES"))
	cfg.Cleanup.ClearStateBeforeRun, _ = strconv.ParseBool(os.Getenv("CLEAR_STATE_BEFORE_RUN"))

	cfg.DiarizationEnabled, _ = strconv.ParseBool(os.Getenv("DIARIZATION_ENABLED"))

	return cfg, nil
}
