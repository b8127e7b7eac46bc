package encoder

import (
	"strconv"
	"strings"

	"github.com/five82/av1an/internal/videoinfo"
)

// svtBuilder builds SvtAv1EncApp argv. Lifted from the stand-alone
// single-encoder pipeline's buildSvtArgs, generalized to take chunk
// dimensions and an explicit quantizer instead of a fixed CRF/preset pair.
type svtBuilder struct{}

func (svtBuilder) BinaryName() string { return "SvtAv1EncApp" }

func (svtBuilder) BuildArgv(p Params) []string {
	fps := p.Info.FPS()
	keyintFrames := int(fps * 10)

	depth := "8"
	if p.Info.Is10Bit() {
		depth = "10"
	}

	args := []string{
		"-i", "stdin",
		"--input-depth", depth,
		"--color-format", "1",
		"--profile", "0",
		"--passes", "1",
		"--tile-rows", "0",
		"--tile-columns", "0",
		"--width", strconv.Itoa(p.Width),
		"--height", strconv.Itoa(p.Height),
		"--fps-num", strconv.Itoa(p.Info.FPSNum),
		"--fps-denom", strconv.Itoa(p.Info.FPSDen),
		"--keyint", strconv.Itoa(keyintFrames),
		"--rc", "0",
		"--scd", "1",
		"--scm", "0",
		"--progress", "2",
		"--frames", strconv.Itoa(p.Frames),
		"--crf", strconv.Itoa(p.Quantizer),
	}

	if p.Info.Color.ColorPrimaries != nil {
		args = append(args, "--color-primaries", strconv.Itoa(int(*p.Info.Color.ColorPrimaries)))
	}
	if p.Info.Color.TransferCharacteristics != nil {
		args = append(args, "--transfer-characteristics", strconv.Itoa(int(*p.Info.Color.TransferCharacteristics)))
	}
	if p.Info.Color.MatrixCoefficients != nil {
		args = append(args, "--matrix-coefficients", strconv.Itoa(int(*p.Info.Color.MatrixCoefficients)))
	}
	if p.Info.Color.MasteringDisplay != nil {
		args = append(args, "--mastering-display", *p.Info.Color.MasteringDisplay)
	}
	if p.Info.Color.ContentLight != nil {
		args = append(args, "--content-light", *p.Info.Color.ContentLight)
	}

	if p.Threads > 0 {
		args = append(args, "--lp", strconv.Itoa(p.Threads))
	}

	args = append(args, p.ExtraArgs...)
	args = append(args, "-b", p.OutputPath)
	return args
}

// ParseProgress reads SvtAv1EncApp's "--progress 2" stderr lines, of the
// form "Encoding frame    42 1.23 kbps" — the frame count is the first
// field after any leading whitespace.
func (svtBuilder) ParseProgress(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "Encoding frame") {
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

func (svtBuilder) PixelFormatArg(videoinfo.PixelFormat) []string {
	// SVT-AV1 infers pixel format from --input-depth/--color-format; no
	// separate flag needed.
	return nil
}
