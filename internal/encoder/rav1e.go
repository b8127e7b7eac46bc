package encoder

import (
	"strconv"
	"strings"

	"github.com/five82/av1an/internal/videoinfo"
)

// rav1eBuilder builds rav1e argv for chunked, stdin-piped (y4m) AV1
// encoding.
type rav1eBuilder struct{}

func (rav1eBuilder) BinaryName() string { return "rav1e" }

func (rav1eBuilder) BuildArgv(p Params) []string {
	fps := p.Info.FPS()
	keyintFrames := int(fps * 10)

	args := []string{
		"-",
		"--output", p.OutputPath,
		"--speed", "6",
		"--quantizer", strconv.Itoa(p.Quantizer),
		"--keyint", strconv.Itoa(keyintFrames),
		"--limit", strconv.Itoa(p.Frames),
		"--threads", "1",
	}
	args = append(args, p.ExtraArgs...)
	return args
}

// ParseProgress reads rav1e's "encoded N frames" periodic stderr line.
func (rav1eBuilder) ParseProgress(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "encoded") || !strings.Contains(line, "frames") {
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

func (rav1eBuilder) PixelFormatArg(videoinfo.PixelFormat) []string {
	// rav1e reads pixel format and bit depth from the y4m stream header
	// written by the Chunk Source Provider; no separate flag is needed.
	return nil
}
