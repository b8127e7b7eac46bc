package encoder

import (
	"strconv"
	"strings"

	"github.com/five82/av1an/internal/videoinfo"
)

// x264Builder builds x264 argv for chunked, stdin-piped (y4m) AVC
// encoding. Output is a bare elementary stream, concatenated with
// mkvmerge rather than ffmpeg per Variant.RequiredMuxer.
type x264Builder struct{}

func (x264Builder) BinaryName() string { return "x264" }

func (x264Builder) BuildArgv(p Params) []string {
	fps := p.Info.FPS()
	keyintFrames := int(fps * 10)

	args := []string{
		"--demuxer", "y4m",
		"--frames", strconv.Itoa(p.Frames),
		"--keyint", strconv.Itoa(keyintFrames),
		"--crf", strconv.Itoa(p.Quantizer),
		"--preset", "medium",
		"--threads", "1",
	}

	if p.Pass > 0 {
		args = append(args, "--pass", strconv.Itoa(p.Pass), "--stats", p.StatsFile)
	}

	args = append(args, p.ExtraArgs...)
	args = append(args, "--output", p.OutputPath, "-")
	return args
}

// ParseProgress reads x264's default "[N%] N/N frames, ..." stderr
// progress line.
func (x264Builder) ParseProgress(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "frames") {
		return 0, false
	}
	fields := strings.Fields(line)
	for _, f := range fields {
		parts := strings.SplitN(f, "/", 2)
		if n, err := strconv.Atoi(strings.TrimPrefix(parts[0], "[")); err == nil {
			return n, true
		}
	}
	return 0, false
}

func (x264Builder) PixelFormatArg(videoinfo.PixelFormat) []string {
	// x264 reads pixel format and bit depth from the y4m stream header.
	return nil
}
