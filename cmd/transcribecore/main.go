// Command transcribecore is a thin CLI over the chunked transcription
// core, adapted from the teacher's cmd/transcriber/main.go: same
// slog-to-file-and-console setup, same signal-driven graceful stop, but
// driving a single finite-artifact run instead of a live call job.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/galak06/chunked-transcriber/config"
	"github.com/galak06/chunked-transcriber/internal/asr"
	"github.com/galak06/chunked-transcriber/internal/asr/azureasr"
	"github.com/galak06/chunked-transcriber/internal/asr/rpcasr"
	"github.com/galak06/chunked-transcriber/internal/asr/whispercpp"
	"github.com/galak06/chunked-transcriber/internal/corerun"
	"github.com/galak06/chunked-transcriber/internal/diarizer"
	"github.com/galak06/chunked-transcriber/internal/model"
	"github.com/galak06/chunked-transcriber/internal/render"
	"github.com/galak06/chunked-transcriber/internal/runctx"
)

const runTimeout = 6 * time.Hour

func main() {
	stateDir := envOrDefault("STATE_DIR", "./data/state")
	audioSliceDir := envOrDefault("AUDIO_SLICE_DIR", "./data/slices")
	outputDir := envOrDefault("OUTPUT_DIR", "./data/output")

	for _, dir := range []string{stateDir, audioSliceDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create directory %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	rc := runctx.New(stateDir, audioSliceDir, outputDir)

	logFile, err := os.Create(filepath.Join(stateDir, "transcribecore.log"))
	if err != nil {
		slog.Error("failed to create log file", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer logFile.Close()

	logWriter := io.MultiWriter(os.Stdout, logFile)
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelInfo,
	})).With("runID", rc.RunID)
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("failed to load config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	cfg.SetDefaults()

	asrAdapter, cleanup, err := buildASRAdapter(cfg)
	if err != nil {
		slog.Error("failed to build ASR adapter", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	var diarizerAdapter diarizer.Adapter // nil: no production diarization backend wired yet

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		slog.Info("received interrupt, cancelling run")
		cancel()
	}()

	slog.Info("starting run", slog.String("source", cfg.SourcePath))

	transcript, err := corerun.Run(ctx, cfg, rc, corerun.Deps{ASR: asrAdapter, Diarizer: diarizerAdapter})
	if err != nil {
		var runErr *corerun.RunError
		if errors.As(err, &runErr) {
			slog.Error("run failed",
				slog.Float64("coverage_fraction", runErr.Report.CoverageFraction),
				slog.Int("failed_windows", len(runErr.Failed)),
				slog.String("err", err.Error()))
		} else {
			slog.Error("run failed", slog.String("err", err.Error()))
		}
		os.Exit(1)
	}

	outPath := filepath.Join(outputDir, fmt.Sprintf("transcript_%s.txt", rc.RunID))
	if err := writeTranscript(outPath, transcript); err != nil {
		slog.Error("failed to write transcript output", slog.String("err", err.Error()))
		os.Exit(1)
	}

	slog.Info("run complete", slog.String("output", outPath), slog.Int("segments", len(transcript.Segments)))
}

func writeTranscript(path string, transcript model.Transcript) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return render.Text(f, transcript)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// buildASRAdapter selects a concrete ASRAdapter backend by the ASR_BACKEND
// environment variable (spec §4.5: adapters are "variants selected at
// construction", never a duck-typed fallback chain). Returns a cleanup
// func that releases the backend's long-lived resources at shutdown.
func buildASRAdapter(cfg config.RunConfig) (asr.Adapter, func(), error) {
	backend := envOrDefault("ASR_BACKEND", "whispercpp")

	switch backend {
	case "whispercpp":
		a, err := whispercpp.New(whispercpp.Config{
			ModelFile:  os.Getenv("WHISPER_MODEL_FILE"),
			NumThreads: envOrDefaultInt("WHISPER_NUM_THREADS", 4),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build whisper.cpp adapter: %w", err)
		}
		return a, func() { _ = a.Destroy() }, nil

	case "azure":
		a, err := azureasr.New(azureasr.Config{
			SpeechKey:    os.Getenv("AZURE_SPEECH_KEY"),
			SpeechRegion: os.Getenv("AZURE_SPEECH_REGION"),
			Language:     os.Getenv("AZURE_SPEECH_LANGUAGE"),
			LogDir:       envOrDefault("STATE_DIR", "./data/state"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build azure adapter: %w", err)
		}
		return a, func() { _ = a.Destroy() }, nil

	case "rpc":
		a, err := rpcasr.New(rpcasr.Config{
			Addr: os.Getenv("REMOTE_ASR_ADDR"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build remote ASR adapter: %w", err)
		}
		return a, func() { _ = a.Destroy() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown ASR_BACKEND %q", backend)
	}
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n <= 0 {
		return def
	}
	return n
}
