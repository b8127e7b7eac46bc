// Package resume implements the Resume Store: an atomic JSON file mapping
// chunk index to completion status, quantizer, and segment path, so a
// second run against the same scratch directory can skip chunks already
// encoded.
package resume

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/five82/av1an/internal/errors"
)

// Record is one chunk's persisted completion state.
type Record struct {
	Done        bool   `json:"done"`
	SegmentPath string `json:"segment_path"`
	Quantizer   int    `json:"quantizer"`
}

// Store is a thread-safe, file-backed resume store. Zero value is not
// usable; construct with Load.
type Store struct {
	mu      sync.Mutex
	path    string
	records map[int]Record
}

// Load reads the resume store at path, returning an empty store if the
// file does not yet exist.
func Load(path string) (*Store, error) {
	s := &Store{path: path, records: make(map[int]Record)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.NewIOError("failed to read resume store", err)
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, errors.NewJSONParseError("failed to parse resume store", err)
	}
	return s, nil
}

// Verify checks a done record's segment file exists, is nonempty, and
// reports expectedFrames frames via frameCounter. Chunks that fail
// verification are demoted back to not-done so the worker pool re-encodes
// them.
func (s *Store) Verify(chunkIndex, expectedFrames int, frameCounter func(path string) (int, error)) {
	s.mu.Lock()
	rec, ok := s.records[chunkIndex]
	s.mu.Unlock()
	if !ok || !rec.Done {
		return
	}

	info, err := os.Stat(rec.SegmentPath)
	if err != nil || info.Size() == 0 {
		s.markIncomplete(chunkIndex)
		return
	}

	if frameCounter == nil {
		return
	}
	frames, err := frameCounter(rec.SegmentPath)
	if err != nil || frames != expectedFrames {
		s.markIncomplete(chunkIndex)
	}
}

func (s *Store) markIncomplete(chunkIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[chunkIndex]
	rec.Done = false
	s.records[chunkIndex] = rec
}

// IsDone reports whether a chunk is marked complete and verified.
func (s *Store) IsDone(chunkIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[chunkIndex]
	return ok && rec.Done
}

// MarkDone records a chunk as complete and persists the store atomically.
func (s *Store) MarkDone(chunkIndex int, segmentPath string, quantizer int) error {
	s.mu.Lock()
	s.records[chunkIndex] = Record{Done: true, SegmentPath: segmentPath, Quantizer: quantizer}
	snapshot := make(map[int]Record, len(s.records))
	for k, v := range s.records {
		snapshot[k] = v
	}
	s.mu.Unlock()

	return writeAtomic(s.path, snapshot)
}

func writeAtomic(path string, records map[int]Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.NewJSONParseError("failed to marshal resume store", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIOError("failed to create scratch directory", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.NewIOError("failed to write resume store", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.NewIOError("failed to rename resume store into place", err)
	}
	return nil
}
