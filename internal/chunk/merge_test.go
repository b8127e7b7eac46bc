package chunk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteConcatFileProducesAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	concatPath := filepath.Join(dir, "concat.txt")

	if err := writeConcatFile(concatPath, []string{"a.ivf", "b.ivf"}); err != nil {
		t.Fatalf("writeConcatFile() error = %v", err)
	}

	data, err := os.ReadFile(concatPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	absA, _ := filepath.Abs("a.ivf")
	if !strings.Contains(content, absA) {
		t.Errorf("concat file %q does not contain absolute path %q", content, absA)
	}
}

func TestSegmentPathsOrdersByIndex(t *testing.T) {
	chunks := []Chunk{
		{Idx: 2, SegmentPath: "2.ivf"},
		{Idx: 0, SegmentPath: "0.ivf"},
		{Idx: 1, SegmentPath: "1.ivf"},
	}
	paths := segmentPaths(chunks)
	want := []string{"0.ivf", "1.ivf", "2.ivf"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("segmentPaths()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestMergeFFmpegRejectsZeroFPSDen(t *testing.T) {
	err := MergeFFmpeg([]Chunk{{Idx: 0, SegmentPath: "0.ivf"}}, 24, 0, "out.mkv", t.TempDir())
	if err == nil {
		t.Error("MergeFFmpeg() with fpsDen=0 expected an error, got nil")
	}
}

func TestMergeMkvmergeRejectsEmptyChunks(t *testing.T) {
	if err := MergeMkvmerge(nil, "out.mkv"); err == nil {
		t.Error("MergeMkvmerge() with no chunks expected an error, got nil")
	}
}
