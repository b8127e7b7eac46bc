package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBoundariesToScenesPartitionsWholeRange(t *testing.T) {
	scenes := boundariesToScenes([]int{50, 120}, 200)

	want := []Scene{
		{StartFrame: 0, EndFrame: 50},
		{StartFrame: 50, EndFrame: 120},
		{StartFrame: 120, EndFrame: 200},
	}
	if len(scenes) != len(want) {
		t.Fatalf("len(scenes) = %d, want %d", len(scenes), len(want))
	}
	for i, s := range scenes {
		if s != want[i] {
			t.Errorf("scenes[%d] = %+v, want %+v", i, s, want[i])
		}
	}
}

func TestBoundariesToScenesIgnoresOutOfRangeAndDuplicateCuts(t *testing.T) {
	scenes := boundariesToScenes([]int{0, 50, 50, 200, 250}, 200)

	total := 0
	for i, s := range scenes {
		if s.EndFrame <= s.StartFrame {
			t.Fatalf("scenes[%d] is empty or inverted: %+v", i, s)
		}
		total += s.Frames()
	}
	if total != 200 {
		t.Errorf("sum of scene frames = %d, want 200", total)
	}
}

func TestApplyExtraSplitLeavesShortScenesAlone(t *testing.T) {
	in := []Scene{{StartFrame: 0, EndFrame: 8}}
	out := applyExtraSplit(in, 10)
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("applyExtraSplit() = %+v, want unchanged", out)
	}
}

func TestApplyExtraSplitCapsLongScenes(t *testing.T) {
	in := []Scene{{StartFrame: 0, EndFrame: 25}}
	out := applyExtraSplit(in, 10)

	total := 0
	for _, s := range out {
		if s.Frames() > 10 {
			t.Errorf("scene %+v exceeds max-frames 10", s)
		}
		total += s.Frames()
	}
	if total != 25 {
		t.Errorf("sum of frames = %d, want 25", total)
	}
	if out[0].StartFrame != 0 || out[len(out)-1].EndFrame != 25 {
		t.Errorf("applyExtraSplit() did not preserve the original range: %+v", out)
	}
}

func TestApplyExtraSplitDisabledWhenMaxFramesZero(t *testing.T) {
	in := []Scene{{StartFrame: 0, EndFrame: 1000}}
	out := applyExtraSplit(in, 0)
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("applyExtraSplit(0) should be a no-op, got %+v", out)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.json")

	scenes := []Scene{{StartFrame: 0, EndFrame: 50}, {StartFrame: 50, EndFrame: 112}}
	if err := Save(path, scenes, 112); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path, 112)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(scenes) {
		t.Fatalf("Load() returned %d scenes, want %d", len(got), len(scenes))
	}
	for i := range scenes {
		if got[i] != scenes[i] {
			t.Errorf("scene %d = %+v, want %+v", i, got[i], scenes[i])
		}
	}
}

func TestLoadRejectsFrameCountMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.json")

	if err := Save(path, []Scene{{StartFrame: 0, EndFrame: 100}}, 100); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := Load(path, 200); err == nil {
		t.Error("Load() expected an error on frame-count mismatch, got nil")
	}
}

func TestLoadPropagatesNotExist(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json"), 100); !os.IsNotExist(err) {
		t.Errorf("Load() error = %v, want os.IsNotExist", err)
	}
}
