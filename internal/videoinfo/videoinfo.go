// Package videoinfo defines the source-description types shared by every
// stage of the pipeline: the probe produces a VideoInfo, the scene splitter
// and chunk planner consume it, and the encoder adapters read it to pick
// pixel-format and color-metadata arguments.
package videoinfo

import (
	"strconv"
	"strings"
)

// PixelFormat identifies a YUV sampling/bit-depth layout.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatYUV420P
	PixelFormatYUV420P10LE
	PixelFormatYUV422P
	PixelFormatYUV422P10LE
	PixelFormatYUV444P
	PixelFormatYUV444P10LE
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatYUV420P:
		return "yuv420p"
	case PixelFormatYUV420P10LE:
		return "yuv420p10le"
	case PixelFormatYUV422P:
		return "yuv422p"
	case PixelFormatYUV422P10LE:
		return "yuv422p10le"
	case PixelFormatYUV444P:
		return "yuv444p"
	case PixelFormatYUV444P10LE:
		return "yuv444p10le"
	default:
		return "unknown"
	}
}

// ParsePixelFormat converts an ffprobe/ffmpeg pixel format name into a
// PixelFormat. Unknown names map to PixelFormatUnknown rather than erroring;
// callers that need strict validation should check for that sentinel.
func ParsePixelFormat(s string) PixelFormat {
	switch s {
	case "yuv420p":
		return PixelFormatYUV420P
	case "yuv420p10le":
		return PixelFormatYUV420P10LE
	case "yuv422p":
		return PixelFormatYUV422P
	case "yuv422p10le":
		return PixelFormatYUV422P10LE
	case "yuv444p":
		return PixelFormatYUV444P
	case "yuv444p10le":
		return PixelFormatYUV444P10LE
	default:
		return PixelFormatUnknown
	}
}

// BitDepth is the per-sample bit depth of the decoded source.
type BitDepth int

const (
	BitDepth8  BitDepth = 8
	BitDepth10 BitDepth = 10
	BitDepth12 BitDepth = 12
)

// ColorMetadata carries the optional HDR/color-space tags that must survive
// the chunked round trip and be reapplied per-chunk at encode time.
type ColorMetadata struct {
	ColorPrimaries          *int32
	TransferCharacteristics *int32
	MatrixCoefficients      *int32
	MasteringDisplay        *string
	ContentLight            *string
}

// VideoInfo is produced once by the Source Probe and never mutated again.
// Every downstream component (scene splitter, chunk planner, source
// provider, encoder adapter) treats it as read-only.
type VideoInfo struct {
	TotalFrames int
	Width       int
	Height      int
	PixFormat   PixelFormat
	FPSNum      int
	FPSDen      int
	BitDepth    BitDepth
	Color       ColorMetadata

	// CropFilter is the ffmpeg "crop=W:H:X:Y" filter string detected by
	// crop detection, or empty if none is required. Width/Height above
	// always describe the undecoded source; CroppedWidth/CroppedHeight
	// give the dimensions every chunk is actually encoded at.
	CropFilter string
}

// FPS returns the frame rate as a float64, or 0 if FPSDen is 0.
func (v VideoInfo) FPS() float64 {
	if v.FPSDen == 0 {
		return 0
	}
	return float64(v.FPSNum) / float64(v.FPSDen)
}

// Is10Bit reports whether the source decodes at 10 bits per sample or more.
func (v VideoInfo) Is10Bit() bool {
	return v.BitDepth >= BitDepth10
}

// CroppedWidth returns the frame width every chunk is encoded at: the crop
// filter's target width if one was detected, otherwise the source width.
func (v VideoInfo) CroppedWidth() int {
	w, _ := v.cropDims()
	return w
}

// CroppedHeight returns the frame height every chunk is encoded at: the
// crop filter's target height if one was detected, otherwise the source
// height.
func (v VideoInfo) CroppedHeight() int {
	_, h := v.cropDims()
	return h
}

func (v VideoInfo) cropDims() (int, int) {
	w, h, _, _, ok := v.parseCropFilter()
	if !ok {
		return v.Width, v.Height
	}
	return w, h
}

// CropOffsets returns the left/top pixel offset CropFilter crops from, for
// decoders (like FFMS2) that crop during decode rather than via an ffmpeg
// filter. Both are 0 when CropFilter is empty. Crop detection only ever
// proposes centered crops, so the left offset also equals the right margin
// and the top offset also equals the bottom margin.
func (v VideoInfo) CropOffsets() (uint32, uint32) {
	_, _, x, y, ok := v.parseCropFilter()
	if !ok {
		return 0, 0
	}
	return x, y
}

// parseCropFilter splits CropFilter's "crop=W:H:X:Y" form into its four
// components. ok is false when CropFilter is empty or malformed.
func (v VideoInfo) parseCropFilter() (w, h int, x, y uint32, ok bool) {
	if v.CropFilter == "" {
		return 0, 0, 0, 0, false
	}
	parts := strings.Split(strings.TrimPrefix(v.CropFilter, "crop="), ":")
	if len(parts) != 4 {
		return 0, 0, 0, 0, false
	}
	wi, errW := strconv.Atoi(parts[0])
	hi, errH := strconv.Atoi(parts[1])
	xu, errX := strconv.ParseUint(parts[2], 10, 32)
	yu, errY := strconv.ParseUint(parts[3], 10, 32)
	if errW != nil || errH != nil || errX != nil || errY != nil {
		return 0, 0, 0, 0, false
	}
	return wi, hi, uint32(xu), uint32(yu), true
}
