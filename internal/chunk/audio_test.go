package chunk

import (
	"path/filepath"
	"testing"
)

func TestExtractAudioNoopWhenNoStreams(t *testing.T) {
	if err := ExtractAudio("in.mkv", "out.mka", nil); err != nil {
		t.Errorf("ExtractAudio() with no streams should be a no-op, got error: %v", err)
	}
}

func TestAudioPathAndMergedVideoPath(t *testing.T) {
	scratch := "/tmp/av1an-scratch"
	if got, want := AudioPath(scratch), filepath.Join(scratch, "audio.mka"); got != want {
		t.Errorf("AudioPath() = %q, want %q", got, want)
	}
	if got, want := MergedVideoPath(scratch), filepath.Join(scratch, "video.mkv"); got != want {
		t.Errorf("MergedVideoPath() = %q, want %q", got, want)
	}
}

func TestMuxFinalMissingVideoFails(t *testing.T) {
	dir := t.TempDir()
	err := MuxFinal(filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "audio.mka"), "in.mkv", filepath.Join(dir, "out.mkv"))
	if err == nil {
		t.Error("MuxFinal() with missing video expected an error, got nil")
	}
}
