package encoder

import (
	"strconv"
	"strings"

	"github.com/five82/av1an/internal/videoinfo"
)

// x265Builder builds x265 argv for chunked, stdin-piped (y4m) HEVC
// encoding. Output is a bare elementary stream, concatenated with
// mkvmerge rather than ffmpeg per Variant.RequiredMuxer.
type x265Builder struct{}

func (x265Builder) BinaryName() string { return "x265" }

func (x265Builder) BuildArgv(p Params) []string {
	fps := p.Info.FPS()
	keyintFrames := int(fps * 10)

	args := []string{
		"--y4m",
		"--input", "-",
		"--frames", strconv.Itoa(p.Frames),
		"--keyint", strconv.Itoa(keyintFrames),
		"--crf", strconv.Itoa(p.Quantizer),
		"--preset", "medium",
		"--pools", "1",
	}
	args = append(args, x265Builder{}.PixelFormatArg(p.Info.PixFormat)...)
	args = append(args, p.ExtraArgs...)
	args = append(args, "--output", p.OutputPath)
	return args
}

// ParseProgress reads x265's default "N frames: ..." trailing-\r progress
// line.
func (x265Builder) ParseProgress(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "frames") {
		return 0, false
	}
	fields := strings.Fields(line)
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			return n, true
		}
	}
	return 0, false
}

func (x265Builder) PixelFormatArg(format videoinfo.PixelFormat) []string {
	if format == videoinfo.PixelFormatYUV420P10LE || format == videoinfo.PixelFormatYUV422P10LE || format == videoinfo.PixelFormatYUV444P10LE {
		return []string{"--output-depth", "10"}
	}
	return []string{"--output-depth", "8"}
}
