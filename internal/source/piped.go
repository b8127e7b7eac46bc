package source

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/videoinfo"
)

// PipedRange seeks the demuxer to the chunk's start time and reads exactly
// its frame count, relying on the source having stable PTS. Cheapest
// method; not frame-accurate on sources with variable frame rate or
// corrupt timestamps.
type PipedRange struct{}

func (p *PipedRange) Stream(ctx context.Context, sourcePath string, start, end int, info *videoinfo.VideoInfo, w io.Writer) error {
	fps := info.FPS()
	if fps <= 0 {
		return errors.NewConfigError("cannot seek piped-range source: frame rate is zero")
	}
	seekSeconds := float64(start) / fps
	frames := end - start

	args := []string{
		"-hide_banner", "-nostdin",
		"-ss", fmt.Sprintf("%.6f", seekSeconds),
		"-i", sourcePath,
		"-frames:v", fmt.Sprintf("%d", frames),
	}
	if info.CropFilter != "" {
		args = append(args, "-vf", info.CropFilter)
	}
	args = append(args,
		"-pix_fmt", info.PixFormat.String(),
		"-f", "yuv4mpegpipe",
		"-",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = w
	var stderr errorBuffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.NewFFmpegError(fmt.Sprintf("piped-range read failed: %v\nstderr: %s", err, stderr.String()))
	}
	return nil
}
