package encoder

import (
	"strconv"
	"strings"

	"github.com/five82/av1an/internal/videoinfo"
)

// vpxBuilder builds vpxenc argv for chunked, stdin-piped VP9 encoding.
type vpxBuilder struct{}

func (vpxBuilder) BinaryName() string { return "vpxenc" }

func (vpxBuilder) BuildArgv(p Params) []string {
	fps := p.Info.FPS()
	keyintFrames := int(fps * 10)

	args := []string{
		"-",
		"--codec=vp9",
		"--ivf",
		"--fps=" + strconv.Itoa(p.Info.FPSNum) + "/" + strconv.Itoa(p.Info.FPSDen),
		"--width=" + strconv.Itoa(p.Width),
		"--height=" + strconv.Itoa(p.Height),
		"--limit=" + strconv.Itoa(p.Frames),
		"--kf-max-dist=" + strconv.Itoa(keyintFrames),
		"--end-usage=q",
		"--cq-level=" + strconv.Itoa(p.Quantizer),
		"--cpu-used=2",
		"--row-mt=1",
		"--threads=1",
	}
	args = append(args, vpxBuilder{}.PixelFormatArg(p.Info.PixFormat)...)

	if p.Pass > 0 {
		args = append(args, "--passes=2", "--pass="+strconv.Itoa(p.Pass), "--fpf="+p.StatsFile)
	}

	args = append(args, p.ExtraArgs...)
	args = append(args, "-o", p.OutputPath)
	return args
}

func (vpxBuilder) ParseProgress(line string) (int, bool) {
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

func (vpxBuilder) PixelFormatArg(format videoinfo.PixelFormat) []string {
	if format == videoinfo.PixelFormatYUV420P10LE || format == videoinfo.PixelFormatYUV422P10LE || format == videoinfo.PixelFormatYUV444P10LE {
		return []string{"--bit-depth=10"}
	}
	return nil
}
