package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "done.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.IsDone(0) {
		t.Error("IsDone() should be false for an empty store")
	}
}

func TestMarkDoneAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.json")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	segPath := filepath.Join(dir, "split", "0.ivf")
	if err := s.MarkDone(0, segPath, 32); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	if !s.IsDone(0) {
		t.Error("IsDone(0) should be true after MarkDone")
	}
	if s.IsDone(1) {
		t.Error("IsDone(1) should be false, never marked")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() (reload) error = %v", err)
	}
	if !reloaded.IsDone(0) {
		t.Error("reloaded store should report chunk 0 done")
	}
}

func TestVerifyDemotesMissingSegment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.json")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.MarkDone(0, filepath.Join(dir, "missing.ivf"), 32); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	s.Verify(0, 48, nil)
	if s.IsDone(0) {
		t.Error("Verify() should demote a chunk whose segment file is missing")
	}
}

func TestVerifyDemotesWrongFrameCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.json")
	segPath := filepath.Join(dir, "0.ivf")
	if err := os.WriteFile(segPath, []byte("not empty"), 0644); err != nil {
		t.Fatalf("failed to write fixture segment: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.MarkDone(0, segPath, 32); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	s.Verify(0, 48, func(string) (int, error) { return 40, nil })
	if s.IsDone(0) {
		t.Error("Verify() should demote a chunk whose segment frame count is wrong")
	}
}

func TestVerifyKeepsCorrectChunkDone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.json")
	segPath := filepath.Join(dir, "0.ivf")
	if err := os.WriteFile(segPath, []byte("not empty"), 0644); err != nil {
		t.Fatalf("failed to write fixture segment: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.MarkDone(0, segPath, 32); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	s.Verify(0, 48, func(string) (int, error) { return 48, nil })
	if !s.IsDone(0) {
		t.Error("Verify() should not demote a chunk whose segment matches")
	}
}

func TestMarkDoneConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "done.json")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		i := i
		go func() {
			done <- s.MarkDone(i, fmt.Sprintf("/tmp/%d.ivf", i), i)
		}()
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Errorf("MarkDone() error = %v", err)
		}
	}

	for i := 0; i < 16; i++ {
		if !s.IsDone(i) {
			t.Errorf("chunk %d should be marked done", i)
		}
	}
}
