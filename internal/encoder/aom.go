package encoder

import (
	"strconv"
	"strings"

	"github.com/five82/av1an/internal/videoinfo"
)

// aomBuilder builds aomenc argv for chunked, stdin-piped AV1 encoding.
type aomBuilder struct{}

func (aomBuilder) BinaryName() string { return "aomenc" }

func (aomBuilder) BuildArgv(p Params) []string {
	fps := p.Info.FPS()
	keyintFrames := int(fps * 10)

	args := []string{
		"-",
		"--ivf",
		"--fps=" + strconv.Itoa(p.Info.FPSNum) + "/" + strconv.Itoa(p.Info.FPSDen),
		"--width=" + strconv.Itoa(p.Width),
		"--height=" + strconv.Itoa(p.Height),
		"--limit=" + strconv.Itoa(p.Frames),
		"--kf-max-dist=" + strconv.Itoa(keyintFrames),
		"--end-usage=q",
		"--cq-level=" + strconv.Itoa(p.Quantizer),
		"--cpu-used=6",
		"--threads=1",
		"--row-mt=1",
		"--tile-columns=0",
	}
	args = append(args, aomBuilder{}.PixelFormatArg(p.Info.PixFormat)...)

	if p.Pass > 0 {
		args = append(args, "--passes=2", "--pass="+strconv.Itoa(p.Pass), "--fpf="+p.StatsFile)
	}

	args = append(args, p.ExtraArgs...)
	args = append(args, "-o", p.OutputPath)
	return args
}

// ParseProgress reads aomenc's default "Pass N/N frame   42/..." stderr
// progress lines.
func (aomBuilder) ParseProgress(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "frame") {
		return 0, false
	}
	fields := strings.Fields(line)
	for _, f := range fields {
		parts := strings.SplitN(f, "/", 2)
		if n, err := strconv.Atoi(parts[0]); err == nil {
			return n, true
		}
	}
	return 0, false
}

func (aomBuilder) PixelFormatArg(format videoinfo.PixelFormat) []string {
	var args []string
	switch format {
	case videoinfo.PixelFormatYUV420P10LE:
		args = append(args, "--bit-depth=10", "--i420")
	case videoinfo.PixelFormatYUV422P, videoinfo.PixelFormatYUV422P10LE:
		args = append(args, "--i422")
	case videoinfo.PixelFormatYUV444P, videoinfo.PixelFormatYUV444P10LE:
		args = append(args, "--i444")
	default:
		args = append(args, "--i420")
	}
	if format == videoinfo.PixelFormatYUV422P10LE || format == videoinfo.PixelFormatYUV444P10LE {
		args = append(args, "--bit-depth=10")
	}
	return args
}
