package rpcasr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigIsValid(t *testing.T) {
	require.EqualError(t, Config{}.IsValid(), "invalid Addr: should not be empty")
	require.NoError(t, Config{Addr: "localhost:9000"}.IsValid())
}

func TestJSONCodecRoundTripsRequest(t *testing.T) {
	codec := jsonCodec{}
	require.Equal(t, "json", codec.Name())

	req := jsonRequest{
		Samples:      []float32{0.1, 0.2, 0.3},
		ModelID:      "base",
		WindowIndex:  2,
		StartSeconds: 10,
		EndSeconds:   40,
	}

	data, err := codec.Marshal(&req)
	require.NoError(t, err)

	var decoded jsonRequest
	require.NoError(t, codec.Unmarshal(data, &decoded))
	require.Equal(t, req, decoded)
}

func TestJSONCodecRoundTripsResponse(t *testing.T) {
	codec := jsonCodec{}

	resp := jsonResponse{
		Text: "hello world",
		Segments: []jsonSegment{
			{StartSeconds: 0, EndSeconds: 1, Text: "hello"},
			{StartSeconds: 1, EndSeconds: 2, Text: "world"},
		},
	}

	data, err := codec.Marshal(&resp)
	require.NoError(t, err)

	var decoded jsonResponse
	require.NoError(t, codec.Unmarshal(data, &decoded))
	require.Equal(t, resp, decoded)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Timeout: time.Second})
	require.Error(t, err)
}
