package chunk

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/five82/av1an/internal/encoder"
	"github.com/five82/av1an/internal/scene"
)

func TestPlanAssignsDenseIndicesAndExtensions(t *testing.T) {
	scenes := []scene.Scene{
		{StartFrame: 0, EndFrame: 50},
		{StartFrame: 50, EndFrame: 120},
	}
	chunks := Plan(scenes, encoder.X265, "/tmp/split", 1)

	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
	for i, c := range chunks {
		if c.Idx != i {
			t.Errorf("chunks[%d].Idx = %d, want %d", i, c.Idx, i)
		}
		want := filepath.Join("/tmp/split", fmt.Sprintf("%d.h265", i))
		if c.SegmentPath != want {
			t.Errorf("chunks[%d].SegmentPath = %q, want %q", i, c.SegmentPath, want)
		}
		if c.Status != StatusPending {
			t.Errorf("chunks[%d].Status = %v, want StatusPending", i, c.Status)
		}
	}
}

func TestSetGetAndUpdate(t *testing.T) {
	chunks := Plan([]scene.Scene{{StartFrame: 0, EndFrame: 100}}, encoder.SvtAV1, "/tmp/split", 1)
	s := NewSet(chunks)

	c, ok := s.Get(0)
	if !ok {
		t.Fatal("Get(0) not found")
	}
	if c.Quantizer != 0 {
		t.Errorf("initial Quantizer = %d, want 0", c.Quantizer)
	}

	s.SetQuantizer(0, 32)
	s.SetStatus(0, StatusDone)

	c, _ = s.Get(0)
	if c.Quantizer != 32 || c.Status != StatusDone {
		t.Errorf("Get(0) after update = %+v, want Quantizer=32 Status=Done", c)
	}

	if _, ok := s.Get(99); ok {
		t.Error("Get(99) should not be found")
	}
}

func TestSetAllReturnsSortedSnapshot(t *testing.T) {
	chunks := Plan([]scene.Scene{
		{StartFrame: 0, EndFrame: 10}, {StartFrame: 10, EndFrame: 20}, {StartFrame: 20, EndFrame: 30},
	}, encoder.AOM, "/tmp/split", 1)
	s := NewSet(chunks)

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	for i, c := range all {
		if c.Idx != i {
			t.Errorf("All()[%d].Idx = %d, want %d", i, c.Idx, i)
		}
	}
}
