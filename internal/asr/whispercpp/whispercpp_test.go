package whispercpp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigIsValid(t *testing.T) {
	dir := t.TempDir()
	modelFile := filepath.Join(dir, "ggml-tiny.bin")
	require.NoError(t, os.WriteFile(modelFile, []byte("fake model"), 0o644))

	tcs := []struct {
		name string
		cfg  Config
		err  string
	}{
		{
			name: "empty model file",
			cfg:  Config{NumThreads: 1},
			err:  "invalid ModelFile: should not be empty",
		},
		{
			name: "non-existent model file",
			cfg:  Config{ModelFile: filepath.Join(dir, "missing.bin"), NumThreads: 1},
		},
		{
			name: "valid",
			cfg:  Config{ModelFile: modelFile, NumThreads: 1},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.IsValid()
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
			} else if tc.name == "non-existent model file" {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
