package source

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/videoinfo"
)

// SelectFilter decodes the entire source and drops every frame outside
// [start, end) via ffmpeg's select filter. Always frame-accurate,
// regardless of seek-table or PTS quality, at the cost of decoding frames
// it then throws away.
type SelectFilter struct{}

func (s *SelectFilter) Stream(ctx context.Context, sourcePath string, start, end int, info *videoinfo.VideoInfo, w io.Writer) error {
	filter := fmt.Sprintf("select='between(n\\,%d\\,%d)',setpts=N/FRAME_RATE/TB", start, end-1)
	if info.CropFilter != "" {
		filter = info.CropFilter + "," + filter
	}

	args := []string{
		"-hide_banner", "-nostdin",
		"-i", sourcePath,
		"-vf", filter,
		"-pix_fmt", info.PixFormat.String(),
		"-f", "yuv4mpegpipe",
		"-",
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = w
	var stderr errorBuffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.NewFFmpegError(fmt.Sprintf("select-filter read failed: %v\nstderr: %s", err, stderr.String()))
	}
	return nil
}
