// Package runctx provides the explicit RunContext value threaded through
// every component of the chunked transcription core. It replaces the
// global process-wide configuration/path state flagged for re-architecture
// in spec §9: every collaborator receives exactly what it needs instead of
// reading package-level variables or environment lookups at call time.
package runctx

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Context carries the paths and identity of a single run. It is immutable
// after construction; components must not mutate it.
type Context struct {
	// RunID uniquely identifies this run for log correlation.
	RunID string

	// StateDir is the root of the durable ChunkStore (chunks/ subdir).
	StateDir string

	// AudioSliceDir holds transient per-window audio slices, eligible for
	// cleanup once a window completes.
	AudioSliceDir string

	// OutputDir holds persisted transcript artifacts (owned by the caller,
	// never written to directly by the core; used only by CleanupCoordinator
	// to enforce retention caps).
	OutputDir string
}

// New creates a Context with a fresh run id.
func New(stateDir, audioSliceDir, outputDir string) Context {
	return Context{
		RunID:         uuid.NewString(),
		StateDir:      stateDir,
		AudioSliceDir: audioSliceDir,
		OutputDir:     outputDir,
	}
}

// ChunksDir returns the directory ChunkStore writes ChunkRecord files to.
func (c Context) ChunksDir() string {
	return filepath.Join(c.StateDir, "chunks")
}
