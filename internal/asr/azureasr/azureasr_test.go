package azureasr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigIsValid(t *testing.T) {
	tcs := []struct {
		name string
		cfg  Config
		err  string
	}{
		{
			name: "missing key",
			cfg:  Config{SpeechRegion: "westus", LogDir: "/tmp"},
			err:  "invalid SpeechKey: should not be empty",
		},
		{
			name: "missing region",
			cfg:  Config{SpeechKey: "key", LogDir: "/tmp"},
			err:  "invalid SpeechRegion: should not be empty",
		},
		{
			name: "missing log dir",
			cfg:  Config{SpeechKey: "key", SpeechRegion: "westus"},
			err:  "invalid LogDir: should not be empty",
		},
		{
			name: "valid",
			cfg:  Config{SpeechKey: "key", SpeechRegion: "westus", LogDir: "/tmp"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.IsValid()
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestJoinNonEmptySkipsBlankEntries(t *testing.T) {
	require.Equal(t, "hello world", joinNonEmpty([]string{"hello", "", "world"}))
	require.Equal(t, "", joinNonEmpty(nil))
	require.Equal(t, "solo", joinNonEmpty([]string{"solo"}))
}
