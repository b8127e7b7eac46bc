// Package encoder builds per-encoder command lines and parses their
// progress output. It implements the closed set of encoder backends named
// in the CLI's -e flag: aom, rav1e, svt-av1, vpx, x265, x264.
package encoder

import (
	"fmt"

	"github.com/five82/av1an/internal/config"
)

// Variant identifies one of the six supported encoder backends.
type Variant int

const (
	AOM Variant = iota
	Rav1e
	SvtAV1
	VPX
	X265
	X264
)

// FromConfig maps the CLI's config.Encoder string to a Variant.
func FromConfig(e config.Encoder) (Variant, error) {
	switch e {
	case config.EncoderAom:
		return AOM, nil
	case config.EncoderRav1e:
		return Rav1e, nil
	case config.EncoderSVT:
		return SvtAV1, nil
	case config.EncoderVPX:
		return VPX, nil
	case config.EncoderX265:
		return X265, nil
	case config.EncoderX264:
		return X264, nil
	default:
		return 0, fmt.Errorf("unknown encoder %q", e)
	}
}

func (v Variant) String() string {
	switch v {
	case AOM:
		return "aom"
	case Rav1e:
		return "rav1e"
	case SvtAV1:
		return "svt-av1"
	case VPX:
		return "vpx"
	case X265:
		return "x265"
	case X264:
		return "x264"
	default:
		return "unknown"
	}
}

// SegmentExt returns the file extension used for this encoder's per-chunk
// segment files.
func (v Variant) SegmentExt() string {
	switch v {
	case X265:
		return "h265"
	case X264:
		return "h264"
	default:
		return "ivf"
	}
}

// CodecName returns the ffprobe codec_name substring expected in the
// final mux's video stream, so output validation can check the right
// codec for whichever variant encoded the job.
func (v Variant) CodecName() string {
	switch v {
	case X265:
		return "hevc"
	case X264:
		return "h264"
	case VPX:
		return "vp9"
	default:
		return "av1"
	}
}

// RequiredMuxer reports which concatenation muxer must be used for this
// encoder's elementary stream, or "" if either works.
func (v Variant) RequiredMuxer() config.Muxer {
	switch v {
	case X265, X264:
		return config.MuxerMkvmerge
	default:
		return ""
	}
}

// QuantizerFlagName returns the argv flag name this encoder uses for its
// quantizer knob, so duplicate user-supplied values can be detected and
// stripped when target-quality is enabled.
func (v Variant) QuantizerFlagName() string {
	switch v {
	case AOM, VPX:
		return "--cq-level"
	case Rav1e:
		return "--quantizer"
	case SvtAV1:
		return "--crf"
	case X265, X264:
		return "--crf"
	default:
		return ""
	}
}

// LegalQuantizerRange returns the inclusive [min, max] quantizer range the
// target-quality controller may search within for this encoder.
func (v Variant) LegalQuantizerRange() (min, max int) {
	switch v {
	case AOM, VPX:
		return 0, 63
	case Rav1e:
		return 0, 255
	case SvtAV1:
		return 1, 63
	case X265, X264:
		return 0, 51
	default:
		return 0, 0
	}
}

// SupportsTwoPass reports whether this encoder can run a stats-file-driven
// two-pass encode.
func (v Variant) SupportsTwoPass() bool {
	switch v {
	case AOM, VPX, X264:
		return true
	default:
		return false
	}
}

// NewBuilder returns the argv/progress-parsing Builder for a variant.
func NewBuilder(v Variant) (Builder, error) {
	switch v {
	case AOM:
		return aomBuilder{}, nil
	case Rav1e:
		return rav1eBuilder{}, nil
	case SvtAV1:
		return svtBuilder{}, nil
	case VPX:
		return vpxBuilder{}, nil
	case X265:
		return x265Builder{}, nil
	case X264:
		return x264Builder{}, nil
	default:
		return nil, fmt.Errorf("no builder for encoder variant %d", v)
	}
}
