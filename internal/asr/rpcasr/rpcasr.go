// Package rpcasr is an ASRAdapter that delegates transcription to a remote
// process over gRPC, using a hand-rolled JSON codec instead of generated
// protobuf stubs, exactly the trick askidmobile-AIWisper's
// internal/api/grpc_service.go uses to reuse a plain Go struct as the wire
// message. This lets a window be transcribed by a sidecar process (e.g. a
// GPU-hosted whisper.cpp server, or a different language runtime) without
// committing to a .proto toolchain.
package rpcasr

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/galak06/chunked-transcriber/internal/errs"
	"github.com/galak06/chunked-transcriber/internal/model"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
)

// jsonCodec lets grpc.ClientConn exchange jsonRequest/jsonResponse values
// directly, same registration idiom as the teacher pack's grpc_service.go.
type jsonCodec struct{}

func (jsonCodec) Name() string                          { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)          { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error     { return json.Unmarshal(data, v) }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

const serviceMethod = "/chunkedtranscriber.RemoteASR/Transcribe"

type jsonRequest struct {
	Samples      []float32 `json:"samples"`
	ModelID      string    `json:"model_id"`
	WindowIndex  int       `json:"window_index"`
	StartSeconds float64   `json:"start_seconds"`
	EndSeconds   float64   `json:"end_seconds"`
}

type jsonSegment struct {
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Text         string  `json:"text"`
}

type jsonResponse struct {
	Text     string        `json:"text"`
	Segments []jsonSegment `json:"segments"`
	ErrKind  string        `json:"err_kind,omitempty"`
	ErrMsg   string        `json:"err_msg,omitempty"`
}

// Config addresses the remote ASR service.
type Config struct {
	Addr    string
	Timeout time.Duration
}

func (c Config) IsValid() error {
	if c.Addr == "" {
		return fmt.Errorf("invalid Addr: should not be empty")
	}
	return nil
}

// Adapter implements asr.Adapter over a persistent gRPC connection to a
// remote ASR service.
type Adapter struct {
	cfg  Config
	conn *grpc.ClientConn
}

func New(cfg Config) (*Adapter, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	conn, err := grpc.NewClient(cfg.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial remote ASR service: %w", err)
	}

	return &Adapter{cfg: cfg, conn: conn}, nil
}

func (a *Adapter) Transcribe(samples []float32, modelID string, windowIndex int, startSeconds, endSeconds float64) (model.WindowTranscript, error) {
	if len(samples) == 0 {
		return model.WindowTranscript{}, errs.NewEmptyOutputError(fmt.Errorf("samples should not be empty"))
	}

	timeout := a.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req := jsonRequest{
		Samples:      samples,
		ModelID:      modelID,
		WindowIndex:  windowIndex,
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
	}
	var resp jsonResponse

	if err := a.conn.Invoke(ctx, serviceMethod, &req, &resp); err != nil {
		return model.WindowTranscript{}, errs.NewTransientError(fmt.Errorf("remote ASR call failed: %w", err))
	}

	if resp.ErrKind != "" {
		wrapped := fmt.Errorf("remote ASR error: %s", resp.ErrMsg)
		switch errs.AdapterErrorKind(resp.ErrKind) {
		case errs.AdapterErrorFatal:
			return model.WindowTranscript{}, errs.NewFatalError(wrapped)
		case errs.AdapterErrorEmptyOutput:
			return model.WindowTranscript{}, errs.NewEmptyOutputError(wrapped)
		default:
			return model.WindowTranscript{}, errs.NewTransientError(wrapped)
		}
	}

	if resp.Text == "" {
		return model.WindowTranscript{}, errs.NewEmptyOutputError(fmt.Errorf("empty transcription output"))
	}

	segments := make([]model.SpeechSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, model.SpeechSegment{
			StartSeconds: s.StartSeconds,
			EndSeconds:   s.EndSeconds,
			Text:         s.Text,
		})
	}

	return model.WindowTranscript{
		Index:        windowIndex,
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
		Text:         resp.Text,
		Segments:     segments,
	}, nil
}

// ReleaseMemory is a no-op that always returns nil: nothing is sent to the
// remote process, which owns its own model lifecycle.
func (a *Adapter) ReleaseMemory() error {
	return nil
}

// Destroy closes the persistent gRPC connection.
func (a *Adapter) Destroy() error {
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
