// Package whispercpp is an in-process ASRAdapter backed by whisper.cpp via
// cgo, adapted from the teacher's apis/whisper.cpp/context.go. Where the
// teacher's Context.Transcribe returned a single-shot segment list for one
// live track, this adapter is generalized to the windowed ASRAdapter
// capability: it reports AdapterError{kind} instead of bare errors. The
// model is loaded once in New and kept until Destroy; ReleaseMemory does
// not free or reload it.
package whispercpp

// #cgo LDFLAGS: -l:libwhisper.a -lm -lstdc++
// #include <whisper.h>
// #include <stdlib.h>
import "C"

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/galak06/chunked-transcriber/internal/errs"
	"github.com/galak06/chunked-transcriber/internal/model"
)

// Config mirrors the teacher's whisper.cpp Config. It carries no language
// hint; whisper's default language handling applies to every window.
type Config struct {
	// ModelFile is the path to the GGML model file to load.
	ModelFile string
	// NumThreads is the number of system threads used for transcription.
	NumThreads int
}

func (c Config) IsValid() error {
	if c.ModelFile == "" {
		return fmt.Errorf("invalid ModelFile: should not be empty")
	}
	if numCPU := runtime.NumCPU(); c.NumThreads <= 0 || c.NumThreads > numCPU {
		return fmt.Errorf("invalid NumThreads: should be in the range [1, %d]", numCPU)
	}
	if _, err := os.Stat(c.ModelFile); err != nil {
		return fmt.Errorf("invalid ModelFile: failed to stat model file: %w", err)
	}
	return nil
}

// Adapter implements asr.Adapter against a loaded whisper.cpp context.
type Adapter struct {
	cfg Config

	mu  sync.Mutex
	ctx *C.struct_whisper_context
}

// New loads the model file once at construction, same as the teacher's
// NewContext.
func New(cfg Config) (*Adapter, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	a := &Adapter{cfg: cfg}
	if err := a.load(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Adapter) load() error {
	path := C.CString(a.cfg.ModelFile)
	defer C.free(unsafe.Pointer(path))

	ctx := C.whisper_init_from_file(path)
	if ctx == nil {
		return fmt.Errorf("failed to load model file %s", a.cfg.ModelFile)
	}
	a.ctx = ctx
	return nil
}

// Transcribe runs whisper_full over samples and maps the resulting
// segments into a WindowTranscript, shifting segment times by the window's
// start offset per spec §3 ("segment times are relative to source").
func (a *Adapter) Transcribe(samples []float32, modelID string, windowIndex int, startSeconds, endSeconds float64) (model.WindowTranscript, error) {
	if len(samples) == 0 {
		return model.WindowTranscript{}, errs.NewEmptyOutputError(fmt.Errorf("samples should not be empty"))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	params := C.whisper_full_default_params(C.WHISPER_SAMPLING_GREEDY)
	params.no_context = C.bool(false)
	params.n_threads = C.int(a.cfg.NumThreads)
	params.split_on_word = C.bool(true)

	ret := C.whisper_full(a.ctx, params, (*C.float)(&samples[0]), C.int(len(samples)))
	if ret != 0 {
		return model.WindowTranscript{}, errs.NewTransientError(fmt.Errorf("whisper_full failed with code %d", ret))
	}

	n := int(C.whisper_full_n_segments(a.ctx))
	segments := make([]model.SpeechSegment, 0, n)
	var texts []string

	for i := 0; i < n; i++ {
		text := strings.TrimSpace(C.GoString(C.whisper_full_get_segment_text(a.ctx, C.int(i))))
		if text == "" {
			continue
		}
		t0 := startSeconds + float64(C.whisper_full_get_segment_t0(a.ctx, C.int(i)))/100.0
		t1 := startSeconds + float64(C.whisper_full_get_segment_t1(a.ctx, C.int(i)))/100.0
		segments = append(segments, model.SpeechSegment{
			StartSeconds: t0,
			EndSeconds:   t1,
			Text:         text,
		})
		texts = append(texts, text)
	}

	fullText := strings.TrimSpace(strings.Join(texts, " "))
	if fullText == "" {
		return model.WindowTranscript{}, errs.NewEmptyOutputError(fmt.Errorf("empty transcription output"))
	}

	return model.WindowTranscript{
		Index:        windowIndex,
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
		Text:         fullText,
		Segments:     segments,
	}, nil
}

// ReleaseMemory is a no-op: whisper.cpp's combined context+state API (the
// one the teacher links against) has no hook to drop transient decode
// buffers without also evicting the loaded model, and spec §4.5 requires
// release_memory() not invalidate an already-loaded model. Kept as a
// method (rather than removed) so the scheduler's unconditional call sites
// stay correct if a future whisper.cpp binding adds a real state-reset.
func (a *Adapter) ReleaseMemory() error {
	return nil
}

// Destroy frees the whisper context permanently. Unlike ReleaseMemory,
// this is meant for run shutdown, not inter-retry cleanup, mirroring the
// teacher's Context.Destroy.
func (a *Adapter) Destroy() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctx == nil {
		return fmt.Errorf("context is not initialized")
	}
	C.whisper_free(a.ctx)
	a.ctx = nil
	return nil
}
