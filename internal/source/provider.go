// Package source implements the Chunk Source Provider: the four ways to
// present a chunk's frame range to an encoder's stdin. indexed uses FFMS2
// (via internal/ffms) for frame-accurate random access; piped-range uses
// ffmpeg's demuxer-level seek; select-filter always decodes the whole
// source but is frame-accurate regardless of seek-table quality; hybrid
// picks between piped-range and indexed per chunk.
package source

import (
	"context"
	"fmt"
	"io"

	"github.com/five82/av1an/internal/config"
	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/videoinfo"
)

// Provider streams one chunk's [start, end) frames, in source order, to w
// in the pixel format/bit depth the chunk was probed with. It must write
// exactly (end-start) frames; any underrun or overrun is the caller's cue
// to abort the chunk.
type Provider interface {
	Stream(ctx context.Context, sourcePath string, start, end int, info *videoinfo.VideoInfo, w io.Writer) error
}

// New returns the Provider for a configured chunk method.
func New(method config.ChunkMethod) (Provider, error) {
	switch method {
	case config.ChunkMethodFFMS2:
		return &Indexed{}, nil
	case config.ChunkMethodSelect:
		return &SelectFilter{}, nil
	case config.ChunkMethodLSMASH:
		return &PipedRange{}, nil
	case config.ChunkMethodHybrid, "":
		return &Hybrid{}, nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown chunk source method %q", method))
	}
}
