package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowingOptionsIsValid(t *testing.T) {
	tcs := []struct {
		name          string
		opts          WindowingOptions
		expectedError string
	}{
		{
			name:          "invalid policy",
			opts:          WindowingOptions{Policy: "bogus", WindowSeconds: 30},
			expectedError: "Policy value is not valid",
		},
		{
			name:          "non-positive window",
			opts:          WindowingOptions{Policy: PolicyFixed, WindowSeconds: 0},
			expectedError: "WindowSeconds should be a positive number",
		},
		{
			name: "overlap not less than window",
			opts: WindowingOptions{
				Policy:               PolicyOverlapping,
				WindowSeconds:        30,
				StrideOverlapSeconds: 30,
			},
			expectedError: "StrideOverlapSeconds should be less than WindowSeconds",
		},
		{
			name: "valid overlapping config",
			opts: WindowingOptions{
				Policy:               PolicyOverlapping,
				WindowSeconds:        30,
				StrideOverlapSeconds: 5,
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.IsValid()
			if tc.expectedError != "" {
				require.EqualError(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRunConfigSetDefaults(t *testing.T) {
	cfg := RunConfig{SourcePath: "in.wav", ModelID: "base"}
	cfg.SetDefaults()

	require.Equal(t, PolicyFixed, cfg.Windowing.Policy)
	require.Equal(t, WindowSecondsDefault, cfg.Windowing.WindowSeconds)
	require.Equal(t, MaxAttemptsDefault, cfg.Scheduler.MaxAttempts)
	require.Equal(t, CoverageThresholdDefault, cfg.Verifier.CoverageThreshold)
	require.Equal(t, MinOverlapCharsDefault, cfg.Dedup.MinOverlapChars)
	require.Equal(t, MaxOutputFilesDefault, cfg.Cleanup.MaxOutputFiles)
	require.NoError(t, cfg.IsValid())
}

func TestRunConfigIsValidRejectsEmptySourcePath(t *testing.T) {
	cfg := RunConfig{ModelID: "base"}
	cfg.SetDefaults()
	require.EqualError(t, cfg.IsValid(), "SourcePath cannot be empty")
}

func TestToEnvFromEnvRoundTrip(t *testing.T) {
	cfg := RunConfig{SourcePath: "in.wav", ModelID: "base", DiarizationEnabled: true}
	cfg.SetDefaults()

	env := cfg.ToEnv()
	require.NotEmpty(t, env)

	for _, kv := range env {
		t.Setenv(envKey(kv), envValue(kv))
	}

	roundTripped, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, cfg.SourcePath, roundTripped.SourcePath)
	require.Equal(t, cfg.Windowing.WindowSeconds, roundTripped.Windowing.WindowSeconds)
	require.Equal(t, cfg.Scheduler.MaxAttempts, roundTripped.Scheduler.MaxAttempts)
	require.True(t, roundTripped.DiarizationEnabled)
}

func envKey(kv string) string {
	for i, r := range kv {
		if r == '=' {
			return kv[:i]
		}
	}
	return kv
}

func envValue(kv string) string {
	for i, r := range kv {
		if r == '=' {
			return kv[i+1:]
		}
	}
	return ""
}
