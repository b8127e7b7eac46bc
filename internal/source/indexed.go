package source

import (
	"context"
	"fmt"
	"io"

	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/ffms"
	"github.com/five82/av1an/internal/videoinfo"
)

// Indexed builds a frame-accurate FFMS2 index of the source and seeks to
// the chunk's start frame, streaming frames to w in source order as a
// YUV4MPEG2 stream. This is the "mature indexer" method spec names as the
// reference implementation of frame-accurate chunk access.
//
// FFMS2 always decodes (and, for 8-bit sources, converts) to 10-bit 4:2:0,
// so the header this writes is fixed at C420p10 regardless of the source's
// native pixel format — the same format PipedRange/SelectFilter request
// from ffmpeg via -pix_fmt, so every Provider implementation hands
// downstream consumers (the encoder, and internal/metric's scorers) an
// identical wire format.
type Indexed struct{}

func (ix *Indexed) Stream(ctx context.Context, sourcePath string, start, end int, info *videoinfo.VideoInfo, w io.Writer) error {
	idx, err := ffms.NewVidIdx(sourcePath, false)
	if err != nil {
		return errors.NewIOError("failed to index source for indexed chunk access", err)
	}
	defer idx.Close()

	vidInf, err := ffms.GetVidInf(idx)
	if err != nil {
		return errors.NewIOError("failed to read FFMS2 video properties", err)
	}

	src, err := ffms.ThrVidSrc(idx, 1)
	if err != nil {
		return errors.NewIOError("failed to open FFMS2 video source", err)
	}
	defer src.Close()

	cropH, cropV := info.CropOffsets()
	strat, cropCalc, err := ffms.GetDecodeStrat(idx, vidInf, cropH, cropV)
	if err != nil {
		return errors.NewIOError("failed to determine decode strategy", err)
	}

	width, height := vidInf.Width, vidInf.Height
	if cropCalc != nil {
		width, height = cropCalc.NewW, cropCalc.NewH
	}

	fpsNum, fpsDen := vidInf.FPSNum, vidInf.FPSDen
	if fpsDen == 0 {
		fpsNum, fpsDen = uint32(info.FPSNum), uint32(info.FPSDen)
	}
	header := fmt.Sprintf("YUV4MPEG2 W%d H%d F%d:%d Ip A1:1 C420p10\n", width, height, fpsNum, fpsDen)
	if _, err := io.WriteString(w, header); err != nil {
		return errors.NewIOError("failed to write y4m header", err)
	}

	frameSize := ffms.CalcFrameSize(vidInf, cropCalc)
	buf := make([]byte, frameSize)

	for frameIdx := start; frameIdx < end; frameIdx++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := ffms.ExtractFrame(src, frameIdx, buf, vidInf, strat, cropCalc); err != nil {
			return errors.NewIOError("failed to extract frame via FFMS2", err)
		}
		if _, err := io.WriteString(w, "FRAME\n"); err != nil {
			return errors.NewIOError("failed to write y4m frame marker", err)
		}
		if _, err := w.Write(buf); err != nil {
			return errors.NewIOError("failed to write frame to encoder stdin", err)
		}
	}
	return nil
}
