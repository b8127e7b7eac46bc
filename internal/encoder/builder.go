package encoder

import (
	"strings"

	"github.com/five82/av1an/internal/videoinfo"
)

// Params describes the inputs a Builder needs to produce one encoder
// invocation's argv. Width/Height/Frames describe the chunk being encoded
// (post-crop, if cropping is ever added); Info carries the source's
// frame rate and color metadata, which every chunk inherits unchanged.
type Params struct {
	Info       *videoinfo.VideoInfo
	Width      int
	Height     int
	Frames     int
	Quantizer  int
	Threads    int // logical processors this chunk's encoder may use, 0 = encoder default
	ExtraArgs  []string // user's raw -v args, quantizer flag already stripped if needed
	OutputPath string
	Pass       int // 0 = single pass, 1 or 2 = two-pass leg
	StatsFile  string
}

// Builder builds argv for one encoder family and parses its progress
// output. Implementations are stateless.
type Builder interface {
	// BuildArgv returns the full argv (excluding argv[0]) for invoking the
	// encoder binary on one chunk.
	BuildArgv(p Params) []string

	// BinaryName is the executable looked up on PATH.
	BinaryName() string

	// ParseProgress extracts a cumulative output-frame count from one line
	// of the encoder's stderr, if that line carries one.
	ParseProgress(line string) (frames int, ok bool)

	// PixelFormatArg returns the flag(s), if any, needed to tell this
	// encoder the input pixel format it should expect on stdin.
	PixelFormatArg(fmt videoinfo.PixelFormat) []string
}

// StripQuantizerFlag removes any occurrence of variant's quantizer flag
// (and its value) from a user-supplied raw argument list. It reports
// whether anything was removed, so the caller can log a warning per
// spec's duplicate-quantizer-elision rule.
func StripQuantizerFlag(v Variant, args []string) (stripped []string, removed bool) {
	flag := v.QuantizerFlagName()
	if flag == "" {
		return args, false
	}
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == flag:
			removed = true
			i++ // also skip the value
		case strings.HasPrefix(a, flag+"="):
			removed = true
		default:
			out = append(out, a)
		}
	}
	return out, removed
}
