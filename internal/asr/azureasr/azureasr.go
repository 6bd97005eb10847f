// Package azureasr is an ASRAdapter backed by Azure Cognitive Services
// Speech SDK, adapted from the teacher's apis/azure/speech_recognizer.go.
// The teacher's SpeechRecognizer.Transcribe already runs as a single-shot
// batch call (push the whole track, wait for end-of-stream); this adapter
// keeps that shape nearly verbatim and only changes the classification of
// failures into AdapterError kinds and the mapping of results into a
// WindowTranscript.
package azureasr

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/galak06/chunked-transcriber/internal/errs"
	"github.com/galak06/chunked-transcriber/internal/model"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
)

const (
	sampleRate = 16000
	bitDepth   = 16
	channels   = 1
)

// Config mirrors the teacher's SpeechRecognizerConfig.
type Config struct {
	SpeechKey    string
	SpeechRegion string
	Language     string
	LogDir       string
}

func (c Config) IsValid() error {
	if c.SpeechKey == "" {
		return fmt.Errorf("invalid SpeechKey: should not be empty")
	}
	if c.SpeechRegion == "" {
		return fmt.Errorf("invalid SpeechRegion: should not be empty")
	}
	if c.LogDir == "" {
		return fmt.Errorf("invalid LogDir: should not be empty")
	}
	return nil
}

// Adapter implements asr.Adapter against the Azure Speech SDK, creating a
// fresh recognizer session per window the way the teacher's Transcribe
// does per track, since the SDK's push stream can't be reliably flushed
// and reused (see the teacher's own TODO in speech_recognizer.go).
type Adapter struct {
	cfg          Config
	speechConfig *speech.SpeechConfig
}

func New(cfg Config) (*Adapter, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	speechConfig, err := speech.NewSpeechConfigFromSubscription(cfg.SpeechKey, cfg.SpeechRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech config: %w", err)
	}
	if err := speechConfig.SetProperty(common.SpeechLogFilename, filepath.Join(cfg.LogDir, "azure.log")); err != nil {
		return nil, fmt.Errorf("failed to set log property: %w", err)
	}
	if cfg.Language != "" {
		if err := speechConfig.SetSpeechRecognitionLanguage(cfg.Language); err != nil {
			return nil, fmt.Errorf("failed to set recognition language: %w", err)
		}
	}

	return &Adapter{cfg: cfg, speechConfig: speechConfig}, nil
}

func initRecognizer(speechConfig *speech.SpeechConfig) (*speech.SpeechRecognizer, *audio.AudioConfig, *audio.PushAudioInputStream, error) {
	stream, err := audio.CreatePushAudioInputStream()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create audio stream: %w", err)
	}

	audioConfig, err := audio.NewAudioConfigFromStreamInput(stream)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create audio config: %w", err)
	}

	recognizer, err := speech.NewSpeechRecognizerFromConfig(speechConfig, audioConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create speech recognizer: %w", err)
	}

	return recognizer, audioConfig, stream, nil
}

// Transcribe pushes samples as a single WAV buffer and collects every
// Recognized event until end-of-stream, shifting segment offsets by
// startSeconds as the whispercpp adapter does.
func (a *Adapter) Transcribe(samples []float32, modelID string, windowIndex int, startSeconds, endSeconds float64) (model.WindowTranscript, error) {
	if len(samples) == 0 {
		return model.WindowTranscript{}, errs.NewEmptyOutputError(fmt.Errorf("samples should not be empty"))
	}

	inputDuration := time.Duration(float32(len(samples))/float32(sampleRate)) * time.Second

	recognizer, audioConfig, stream, err := initRecognizer(a.speechConfig)
	if err != nil {
		return model.WindowTranscript{}, errs.NewFatalError(err)
	}
	defer func() {
		stream.CloseStream()
		audioConfig.Close()
		recognizer.Close()
	}()

	resultsCh := make(chan speech.SpeechRecognitionResult, 8)
	errCh := make(chan error, 1)
	eosCh := make(chan struct{})

	recognizer.Recognized(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()

		if event.Result.Reason == common.NoMatch {
			return
		}
		if len(event.Result.Text) == 0 {
			return
		}
		resultsCh <- event.Result
	})
	recognizer.Canceled(func(event speech.SpeechRecognitionCanceledEventArgs) {
		defer event.Close()
		slog.Debug("azure recognition canceled", slog.String("details", event.ErrorDetails))
		if event.Reason == common.EndOfStream {
			close(eosCh)
		} else if event.Reason == common.Error {
			errCh <- errors.New(event.ErrorDetails)
		}
	})

	if err := <-recognizer.StartContinuousRecognitionAsync(); err != nil {
		return model.WindowTranscript{}, errs.NewTransientError(fmt.Errorf("failed to start recognizer: %w", err))
	}
	defer func() {
		if err := <-recognizer.StopContinuousRecognitionAsync(); err != nil {
			slog.Error("failed to stop azure recognizer", slog.String("err", err.Error()))
		}
	}()

	if err := stream.Write(f32PCMToWAV(samples)); err != nil {
		return model.WindowTranscript{}, errs.NewTransientError(fmt.Errorf("failed to write audio data: %w", err))
	}
	stream.CloseStream()

	timeoutCh := time.After(max(inputDuration*2, 10*time.Second))

	var segments []model.SpeechSegment
	var texts []string
	for {
		select {
		case result := <-resultsCh:
			t0 := startSeconds + result.Offset.Seconds()
			t1 := t0 + result.Duration.Seconds()
			segments = append(segments, model.SpeechSegment{
				StartSeconds: t0,
				EndSeconds:   t1,
				Text:         result.Text,
			})
			texts = append(texts, result.Text)
		case <-timeoutCh:
			return model.WindowTranscript{}, errs.NewTransientError(fmt.Errorf("timed out waiting for transcription"))
		case err := <-errCh:
			return model.WindowTranscript{}, errs.NewTransientError(fmt.Errorf("transcription failed: %w", err))
		case <-eosCh:
			fullText := joinNonEmpty(texts)
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
	}
}

func joinNonEmpty(texts []string) string {
	out := ""
	for _, t := range texts {
		if t == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += t
	}
	return out
}

// ReleaseMemory is a no-op: each Transcribe call already tears down its own
// recognizer/stream/config on return, so there is no persistent per-window
// resource to release between calls. The long-lived speechConfig is the
// loaded-model analogue and must survive, per spec §4.5.
func (a *Adapter) ReleaseMemory() error {
	return nil
}

// Destroy releases the long-lived speech config at run shutdown.
func (a *Adapter) Destroy() error {
	if a.speechConfig != nil {
		a.speechConfig.Close()
	}
	return nil
}
