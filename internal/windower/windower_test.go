package windower

import (
	"testing"

	"github.com/galak06/chunked-transcriber/config"

	"github.com/stretchr/testify/require"
)

func TestWindowsFixedPolicy(t *testing.T) {
	opts := config.WindowingOptions{Policy: config.PolicyFixed, WindowSeconds: 60}

	windows, err := Windows(120, opts)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	require.Equal(t, 0.0, windows[0].StartSeconds)
	require.Equal(t, 60.0, windows[0].EndSeconds)
	require.Equal(t, 60.0, windows[1].StartSeconds)
	require.Equal(t, 120.0, windows[1].EndSeconds)
}

func TestWindowsFixedPolicyShortTail(t *testing.T) {
	opts := config.WindowingOptions{Policy: config.PolicyFixed, WindowSeconds: 60}

	windows, err := Windows(100, opts)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	require.Equal(t, 60.0, windows[1].StartSeconds)
	require.Equal(t, 100.0, windows[1].EndSeconds)
}

func TestWindowsOverlappingScenario1(t *testing.T) {
	opts := config.WindowingOptions{
		Policy:               config.PolicyOverlapping,
		WindowSeconds:        30,
		StrideOverlapSeconds: 5,
	}

	windows, err := Windows(55, opts)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	require.Equal(t, 0.0, windows[0].StartSeconds)
	require.Equal(t, 30.0, windows[0].EndSeconds)
	require.Equal(t, 25.0, windows[1].StartSeconds)
	require.Equal(t, 55.0, windows[1].EndSeconds)
	require.Equal(t, 5.0, windows[1].ExpectedOverlapSeconds)
}

func TestWindowsOverlappingScenario3TerminalShortWindow(t *testing.T) {
	opts := config.WindowingOptions{
		Policy:               config.PolicyOverlapping,
		WindowSeconds:        30,
		StrideOverlapSeconds: 5,
		MinWindowSeconds:     10,
	}

	windows, err := Windows(62, opts)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	require.Equal(t, 0.0, windows[0].StartSeconds)
	require.Equal(t, 25.0, windows[1].StartSeconds)
	require.Equal(t, 50.0, windows[2].StartSeconds)
	require.Equal(t, 62.0, windows[2].EndSeconds)
}

func TestWindowsDurationEqualsWindowSeconds(t *testing.T) {
	opts := config.WindowingOptions{Policy: config.PolicyOverlapping, WindowSeconds: 30, StrideOverlapSeconds: 5}

	windows, err := Windows(30, opts)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	require.Equal(t, 0.0, windows[0].ExpectedOverlapSeconds)
}

func TestWindowsDurationSlightlyLessThanWindowSeconds(t *testing.T) {
	opts := config.WindowingOptions{Policy: config.PolicyOverlapping, WindowSeconds: 30, StrideOverlapSeconds: 5}

	windows, err := Windows(29.5, opts)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	require.Equal(t, 29.5, windows[0].EndSeconds)
}

func TestWindowsRejectsNonPositiveDuration(t *testing.T) {
	_, err := Windows(0, config.WindowingOptions{Policy: config.PolicyFixed, WindowSeconds: 30})
	require.Error(t, err)
}

func TestWindowsRejectsInvalidOptions(t *testing.T) {
	_, err := Windows(60, config.WindowingOptions{
		Policy:               config.PolicyOverlapping,
		WindowSeconds:        30,
		StrideOverlapSeconds: 30,
	})
	require.Error(t, err)
}
