// Package chunkstore implements the ChunkStore capability (spec §4.3, §6):
// a durable, append-mostly store of per-window state records on the
// filesystem, one JSON document per window, written with a
// temp-file-then-rename atomic protocol. Grounded on the teacher's
// publishTranscription retry/flush idiom (call/utils.go) and config.go's
// FromMap float64-vs-int JSON gotcha.
package chunkstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/galak06/chunked-transcriber/internal/errs"
	"github.com/galak06/chunked-transcriber/internal/model"
)

// Store is the filesystem-backed ChunkStore. It supports many concurrent
// readers and at most one writer per index; callers are responsible for
// not issuing concurrent writes to the same index (spec §4.3).
type Store struct {
	dir string

	mu       sync.Mutex
	existing map[int]struct{}
}

// New opens (and creates, if absent) the chunks directory under dir,
// seeding the in-memory existence set from whatever records are already
// on disk so Create's duplicate check holds across process restarts, not
// just within one Store's lifetime (spec §4.3's durability clause: the
// store must be readable by a fresh process).
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &errs.IoError{Op: "create chunk store dir", Err: err}
	}

	s := &Store{dir: dir, existing: make(map[int]struct{})}

	names, err := s.listFiles()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		rec, err := s.readFile(name)
		if err != nil {
			continue
		}
		s.existing[rec.Index] = struct{}{}
	}

	return s, nil
}

func recordFileName(rec model.ChunkRecord) string {
	return fmt.Sprintf("chunk_%03d_%gs_%gs.json", rec.Index, rec.StartSeconds, rec.EndSeconds)
}

func (s *Store) pathFor(rec model.ChunkRecord) string {
	return filepath.Join(s.dir, recordFileName(rec))
}

// Create writes a new ChunkRecord with status=created. Fails if a record
// for that index already exists.
func (s *Store) Create(spec model.WindowSpec) (model.ChunkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.existing[spec.Index]; ok {
		return model.ChunkRecord{}, fmt.Errorf("chunk record %d already exists", spec.Index)
	}

	rec := model.ChunkRecord{
		Index:         spec.Index,
		StartSeconds:  spec.StartSeconds,
		EndSeconds:    spec.EndSeconds,
		Status:        model.StatusCreated,
	}

	if err := s.writeAtomic(rec); err != nil {
		return model.ChunkRecord{}, err
	}
	s.existing[spec.Index] = struct{}{}

	return rec, nil
}

// Update atomically replaces the record for rec.Index via
// write-to-temp-then-rename, followed by an explicit fsync of both the
// file and its parent directory so the record is durable before Update
// returns (spec §4.3, §6).
func (s *Store) Update(rec model.ChunkRecord) error {
	return s.writeAtomic(rec)
}

func (s *Store) writeAtomic(rec model.ChunkRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunk record: %w", err)
	}

	final := s.pathFor(rec)
	tmp := final + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &errs.IoError{Op: "create temp chunk file", Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return &errs.IoError{Op: "write temp chunk file", Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &errs.IoError{Op: "fsync temp chunk file", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &errs.IoError{Op: "close temp chunk file", Err: err}
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return &errs.IoError{Op: "rename chunk file", Err: err}
	}

	if dir, err := os.Open(s.dir); err == nil {
		_ = dir.Sync()
		dir.Close()
	}

	return nil
}

// Read loads the record for index. Readers must tolerate the final file
// being absent (record not yet created) and must never read *.tmp files;
// Read only ever opens the final, renamed path.
func (s *Store) Read(index int) (model.ChunkRecord, error) {
	entries, err := s.listFiles()
	if err != nil {
		return model.ChunkRecord{}, err
	}

	for _, name := range entries {
		rec, err := s.readFile(name)
		if err != nil {
			continue
		}
		if rec.Index == index {
			return rec, nil
		}
	}

	return model.ChunkRecord{}, fmt.Errorf("no chunk record for index %d", index)
}

// List returns every record currently on disk, sorted by start time.
func (s *Store) List() ([]model.ChunkRecord, error) {
	entries, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	records := make([]model.ChunkRecord, 0, len(entries))
	for _, name := range entries {
		rec, err := s.readFile(name)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartSeconds < records[j].StartSeconds
	})

	return records, nil
}

func (s *Store) listFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &errs.IoError{Op: "list chunk store", Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".json" {
			// Skip *.tmp and anything else that isn't a finalized record.
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

func (s *Store) readFile(name string) (model.ChunkRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return model.ChunkRecord{}, &errs.IoError{Op: "read chunk file", Err: err}
	}

	var rec model.ChunkRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.ChunkRecord{}, fmt.Errorf("failed to unmarshal chunk record %s: %w", name, err)
	}

	return rec, nil
}
