package chunk

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/ffprobe"
)

// ExtractAudio copies (never transcodes, per the job's audio-is-passthrough
// contract) the source's audio streams into a standalone container, so
// they can be remuxed against the concatenated video independently of
// the per-chunk encode pipeline.
func ExtractAudio(inputPath, audioPath string, audioStreams []ffprobe.AudioStreamInfo) error {
	if len(audioStreams) == 0 {
		return nil
	}

	args := []string{
		"-hide_banner",
		"-i", inputPath,
		"-vn",
		"-map_metadata", "0",
	}
	for _, stream := range audioStreams {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", stream.Index))
	}
	args = append(args, "-c:a", "copy", "-y", audioPath)

	cmd := exec.Command("ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.NewFFmpegError(fmt.Sprintf("audio extraction failed: %v\noutput: %s", err, out))
	}
	return nil
}

// MuxFinal combines the concatenated video with the extracted audio and
// the original source's subtitles/chapters/metadata into the final
// output container, copying every stream untouched.
func MuxFinal(videoPath, audioPath, inputPath, outputPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return errors.NewIOError("merged video file not found", err)
	}

	args := []string{"-hide_banner", "-i", videoPath}

	hasAudio := false
	if _, err := os.Stat(audioPath); err == nil {
		args = append(args, "-i", audioPath)
		hasAudio = true
	}
	args = append(args, "-i", inputPath)

	args = append(args, "-map", "0:v:0")
	subtitleInput := 1
	if hasAudio {
		args = append(args, "-map", "1:a?")
		subtitleInput = 2
	}
	args = append(args, "-map", fmt.Sprintf("%d:s?", subtitleInput))

	args = append(args,
		"-c", "copy",
		"-map_metadata", "0",
		"-map_chapters", fmt.Sprintf("%d", subtitleInput),
		"-y", outputPath,
	)

	cmd := exec.Command("ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.NewFFmpegError(fmt.Sprintf("final mux failed: %v\noutput: %s", err, out))
	}
	return nil
}

// EnsureSplitDir creates the scratch directory holding per-chunk segment
// files.
func EnsureSplitDir(splitDir string) error {
	if err := os.MkdirAll(splitDir, 0755); err != nil {
		return errors.NewIOError("failed to create split directory", err)
	}
	return nil
}

// AudioPath returns the path to the extracted, passthrough-copied audio
// track inside the scratch directory.
func AudioPath(scratchDir string) string {
	return filepath.Join(scratchDir, "audio.mka")
}

// MergedVideoPath returns the path to the concatenated, video-only stream
// inside the scratch directory.
func MergedVideoPath(scratchDir string) string {
	return filepath.Join(scratchDir, "video.mkv")
}
