// Package cleanup implements the CleanupCoordinator capability (spec
// §4.9), adapted from original_source's CleanupService: clearing transient
// audio-slice artifacts, optionally clearing prior per-window state before
// a run, and pruning old output files by retention count after a run. All
// operations are best-effort; failures are logged and swallowed, never
// propagated to the caller, matching the Python original's try/except
// cleanup_results pattern.
package cleanup

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/galak06/chunked-transcriber/config"
)

// Coordinator enforces retention/cleanup policy at the lifecycle points
// named in spec §4.9.
type Coordinator struct {
	audioSliceDir string
	stateDir      string
	outputDir     string
	opts          config.CleanupOptions
}

func New(audioSliceDir, stateDir, outputDir string, opts config.CleanupOptions) *Coordinator {
	return &Coordinator{
		audioSliceDir: audioSliceDir,
		stateDir:      stateDir,
		outputDir:     outputDir,
		opts:          opts,
	}
}

// BeforeRun clears transient audio slices and, if configured, the prior
// run's chunk store. It never touches final transcript outputs.
func (c *Coordinator) BeforeRun() {
	clearDir(c.audioSliceDir, "*.wav")

	if c.opts.ClearStateBeforeRun {
		clearDir(filepath.Join(c.stateDir, "chunks"), "*.json")
	}
}

// Periodic is invoked by the scheduler every CleanupPeriod windows (spec
// §4.4); today it is the same transient-slice sweep as BeforeRun, kept as
// its own entry point so the scheduler's call site reads as a distinct
// lifecycle hook rather than a reuse of BeforeRun's semantics.
func (c *Coordinator) Periodic() {
	clearDir(c.audioSliceDir, "*.wav")
}

// AfterRun clears transient audio slices and prunes old output files,
// retaining the most recent MaxOutputFiles. Per-window ChunkStore records
// are left untouched.
func (c *Coordinator) AfterRun() {
	clearDir(c.audioSliceDir, "*.wav")
	c.pruneOutputs()
}

func clearDir(dir, pattern string) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		slog.Warn("cleanup: failed to glob directory", slog.String("dir", dir), slog.String("err", err.Error()))
		return
	}

	cleared := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			slog.Warn("cleanup: failed to remove file", slog.String("path", path), slog.String("err", err.Error()))
			continue
		}
		cleared++
	}
	slog.Debug("cleanup: cleared transient files", slog.String("dir", dir), slog.Int("count", cleared))
}

func (c *Coordinator) pruneOutputs() {
	if c.opts.MaxOutputFiles <= 0 || c.outputDir == "" {
		return
	}

	entries, err := os.ReadDir(c.outputDir)
	if err != nil {
		slog.Warn("cleanup: failed to list output dir", slog.String("dir", c.outputDir), slog.String("err", err.Error()))
		return
	}

	type fileInfo struct {
		path    string
		modTime int64
	}
	var files []fileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: filepath.Join(c.outputDir, e.Name()), modTime: info.ModTime().UnixNano()})
	}

	if len(files) <= c.opts.MaxOutputFiles {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime > files[j].modTime })

	for _, f := range files[c.opts.MaxOutputFiles:] {
		if err := os.Remove(f.path); err != nil {
			slog.Warn("cleanup: failed to prune output file", slog.String("path", f.path), slog.String("err", err.Error()))
			continue
		}
		slog.Debug("cleanup: pruned output file", slog.String("path", f.path))
	}
}
