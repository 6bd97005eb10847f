// Package audio implements the AudioSource capability (spec §4.2): opening
// a source artifact, exposing its total duration, and slicing arbitrary
// [start,end) ranges into mono 16kHz PCM. The concrete Source decodes via
// ffmpeg (system binary, driven through the ffmpeg-go builder) and reads
// the resulting WAV slice with go-audio/wav, following the chunk-extraction
// shape of leomorpho-ramble-ai's ffmpeg_helper.go.
package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/galak06/chunked-transcriber/internal/errs"

	"github.com/go-audio/wav"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	// SampleRate is the fixed sample rate every slice is resampled to
	// (spec §3, SourceAudio.sample_rate).
	SampleRate = 16000

	maxProbeRetries  = 3
	probeRetryWait   = 2 * time.Second
)

// Source is the AudioSource capability consumed by the scheduler.
type Source interface {
	// DurationSeconds returns the cached total duration, measured once.
	DurationSeconds() float64
	// Slice returns mono 16kHz PCM samples for [start, end).
	Slice(start, end float64) ([]float32, error)
}

// ffprobeFormat is the subset of `ffprobe -show_format -of json` this
// package reads to determine source duration.
type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// FFmpegSource is the concrete Source backed by a system ffmpeg/ffprobe
// install, decoding on demand into a scratch directory.
type FFmpegSource struct {
	path       string
	scratchDir string

	mu       sync.Mutex
	duration float64
	probed   bool
}

// NewFFmpegSource opens path and probes its duration once; the duration is
// cached for the lifetime of the Source per spec §4.2 ("never re-read").
func NewFFmpegSource(path, scratchDir string) (*FFmpegSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &errs.IoError{Op: "stat source audio", Err: err}
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, &errs.IoError{Op: "create scratch dir", Err: err}
	}

	s := &FFmpegSource{path: path, scratchDir: scratchDir}

	duration, err := probeDuration(path)
	if err != nil {
		return nil, err
	}
	s.duration = duration
	s.probed = true

	return s, nil
}

func probeDuration(path string) (float64, error) {
	var lastErr error
	for attempt := 0; attempt < maxProbeRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(probeRetryWait)
		}

		raw, err := ffmpeg.Probe(path)
		if err != nil {
			lastErr = err
			continue
		}

		var parsed ffprobeFormat
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			lastErr = fmt.Errorf("failed to parse ffprobe output: %w", err)
			continue
		}

		var duration float64
		if _, err := fmt.Sscanf(parsed.Format.Duration, "%g", &duration); err != nil {
			lastErr = fmt.Errorf("failed to parse duration %q: %w", parsed.Format.Duration, err)
			continue
		}
		if duration <= 0 {
			lastErr = fmt.Errorf("ffprobe reported non-positive duration %g", duration)
			continue
		}

		return duration, nil
	}

	return 0, &errs.IoError{Op: "probe source duration", Err: lastErr}
}

func (s *FFmpegSource) DurationSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Slice decodes [start, end) into mono 16kHz PCM via ffmpeg, writing a
// transient WAV file into the scratch directory and decoding it back with
// go-audio/wav. Safe for concurrent callers: each invocation uses a
// distinct temp file, created with os.CreateTemp.
func (s *FFmpegSource) Slice(start, end float64) ([]float32, error) {
	duration := s.DurationSeconds()
	if start < 0 || end <= start || end > duration+1e-6 {
		return nil, &errs.RangeError{Start: start, End: end, Duration: duration}
	}

	tmp, err := os.CreateTemp(s.scratchDir, "slice_*.wav")
	if err != nil {
		return nil, &errs.IoError{Op: "create audio slice file", Err: err}
	}
	outPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outPath)

	err = ffmpeg.Input(s.path, ffmpeg.KwArgs{"ss": fmt.Sprintf("%.3f", start)}).
		Output(outPath, ffmpeg.KwArgs{
			"t":      fmt.Sprintf("%.3f", end-start),
			"ar":     fmt.Sprintf("%d", SampleRate),
			"ac":     "1",
			"acodec": "pcm_s16le",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return nil, &errs.IoError{Op: "slice audio", Err: err}
	}

	samples, err := decodeWAV(outPath)
	if err != nil {
		return nil, err
	}

	return samples, nil
}

func decodeWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.IoError{Op: "open audio slice", Err: err}
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &errs.IoError{Op: "decode audio slice", Err: err}
	}

	samples := make([]float32, len(buf.Data))
	maxAmplitude := float32(int(1) << (buf.SourceBitDepth - 1))
	if maxAmplitude == 0 {
		maxAmplitude = 32768
	}
	for i, v := range buf.Data {
		samples[i] = float32(v) / maxAmplitude
	}

	return samples, nil
}
