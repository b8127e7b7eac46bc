// Package probe implements the Source Probe: it runs ffprobe (and, for
// pixel-format/color metadata ffprobe can miss, mediainfo) once per job
// to produce the videoinfo.VideoInfo every downstream stage treats as
// read-only ground truth.
package probe

import (
	"fmt"
	"os/exec"

	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/ffprobe"
	"github.com/five82/av1an/internal/mediainfo"
	"github.com/five82/av1an/internal/videoinfo"
)

// Probe runs ffprobe against inputPath and returns the VideoInfo the rest
// of the pipeline is built on. It is an error (ProbeError) for the source
// to be missing a video stream or to report a zero frame count, width, or
// height.
func Probe(inputPath string) (*videoinfo.VideoInfo, error) {
	props, err := ffprobe.GetVideoProperties(inputPath)
	if err != nil {
		return nil, errors.NewProbeError(fmt.Sprintf("ffprobe failed for %s: %v", inputPath, err))
	}

	media, err := ffprobe.GetMediaInfo(inputPath)
	if err != nil {
		return nil, errors.NewProbeError(fmt.Sprintf("ffprobe failed for %s: %v", inputPath, err))
	}

	if props.Width == 0 || props.Height == 0 {
		return nil, errors.NewProbeError(fmt.Sprintf("%s reports impossible dimensions %dx%d", inputPath, props.Width, props.Height))
	}
	if media.TotalFrames == 0 {
		return nil, errors.NewProbeError(fmt.Sprintf("%s reports zero frames", inputPath))
	}

	fpsNum, fpsDen, err := frameRate(inputPath, media, props.DurationSecs)
	if err != nil {
		return nil, err
	}

	bitDepth := videoinfo.BitDepth8
	if props.HDRInfo.BitDepth != nil && *props.HDRInfo.BitDepth >= 10 {
		bitDepth = videoinfo.BitDepth(*props.HDRInfo.BitDepth)
	}

	info := &videoinfo.VideoInfo{
		TotalFrames: int(media.TotalFrames),
		Width:       int(props.Width),
		Height:      int(props.Height),
		FPSNum:      fpsNum,
		FPSDen:      fpsDen,
		BitDepth:    bitDepth,
	}

	if err := enrichColorMetadata(inputPath, info); err != nil {
		// mediainfo is a secondary source for HDR tags only; its absence
		// or failure does not invalidate an otherwise-valid probe.
		info.Color = videoinfo.ColorMetadata{}
	}

	return info, nil
}

// frameRate derives FPSNum/FPSDen from the stream's reported frame count
// and duration, since ffprobe's own r_frame_rate parsing is not exposed
// by the retained ffprobe helpers.
func frameRate(inputPath string, media *ffprobe.MediaInfo, durationSecs float64) (num, den int, err error) {
	if durationSecs <= 0 || media.TotalFrames == 0 {
		return 0, 0, errors.NewProbeError(fmt.Sprintf("%s: cannot derive frame rate (duration=%g, frames=%d)", inputPath, durationSecs, media.TotalFrames))
	}
	fps := float64(media.TotalFrames) / durationSecs
	// Snap to the common NTSC/film rates so chunk-duration math lines up
	// with what the encoder actually outputs; otherwise use a 1000-denominator
	// rational approximation.
	switch {
	case near(fps, 23.976):
		return 24000, 1001, nil
	case near(fps, 29.97):
		return 30000, 1001, nil
	case near(fps, 59.94):
		return 60000, 1001, nil
	default:
		return int(fps * 1000), 1000, nil
	}
}

func near(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 0.01
}

// enrichColorMetadata fills in VideoInfo.Color from mediainfo's HDR track
// data when available. mediainfo reports color tags as names ("BT.2020")
// rather than the numeric codes ffms2 exposes, so only the boolean HDR
// signal and bit depth are trustworthy here; numeric primaries/transfer/
// matrix codes are left nil and are instead populated by internal/source
// when the indexed provider's ffms2 index carries them.
func enrichColorMetadata(inputPath string, info *videoinfo.VideoInfo) error {
	if _, err := exec.LookPath("mediainfo"); err != nil {
		return err
	}
	resp, err := mediainfo.GetMediaInfo(inputPath)
	if err != nil {
		return err
	}
	hdr := mediainfo.DetectHDR(resp)
	if hdr.BitDepth != nil && videoinfo.BitDepth(*hdr.BitDepth) > info.BitDepth {
		info.BitDepth = videoinfo.BitDepth(*hdr.BitDepth)
	}
	return nil
}
