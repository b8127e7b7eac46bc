package metric

import (
	"context"
	"fmt"

	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/vship"
)

// GPUScorer scores probes via vship's CUDA/HIP-accelerated SSIMULACRA2,
// reading both y4m inputs frame by frame and feeding raw 10-bit YUV420
// planes directly to the GPU, bypassing ffmpeg and libvmaf entirely. It
// implements the same Scorer interface as VMAFScorer so the target-quality
// controller can't tell which backend it's driving.
//
// Not the default scorer: spec.md names VMAF, not SSIMULACRA2, as the
// required metric. GPUScorer exists for local experimentation on machines
// with a supported GPU and libvship installed.
type GPUScorer struct{}

func (GPUScorer) Score(ctx context.Context, referencePath, distortedPath string, frameRate float64) (float64, []float64, error) {
	ref, err := openY4M(referencePath)
	if err != nil {
		return 0, nil, errors.NewIOError("failed to open reference y4m for GPU scoring", err)
	}
	defer ref.close()

	dis, err := openY4M(distortedPath)
	if err != nil {
		return 0, nil, errors.NewIOError("failed to open distorted y4m for GPU scoring", err)
	}
	defer dis.close()

	if ref.width != dis.width || ref.height != dis.height {
		return 0, nil, errors.NewAnalysisError(fmt.Sprintf("GPU scorer: dimension mismatch %dx%d vs %dx%d",
			ref.width, ref.height, dis.width, dis.height))
	}

	if err := vship.InitDevice(); err != nil {
		return 0, nil, errors.NewAnalysisError("GPU scorer: " + err.Error())
	}
	proc, err := vship.NewProcessor(uint32(ref.width), uint32(ref.height), nil, nil, nil, nil, nil)
	if err != nil {
		return 0, nil, errors.NewAnalysisError("GPU scorer: " + err.Error())
	}
	defer proc.Close()

	var frameScores []float64
	for {
		select {
		case <-ctx.Done():
			return 0, nil, errors.NewInterruptedError()
		default:
		}

		srcFrame, ok, err := ref.nextFrame()
		if err != nil {
			return 0, nil, errors.NewAnalysisError("GPU scorer: " + err.Error())
		}
		if !ok {
			break
		}
		disFrame, ok, err := dis.nextFrame()
		if err != nil {
			return 0, nil, errors.NewAnalysisError("GPU scorer: " + err.Error())
		}
		if !ok {
			break
		}

		score, err := proc.ComputeSSIMULACRA2(srcFrame.planes, disFrame.planes, srcFrame.strides, disFrame.strides)
		if err != nil {
			return 0, nil, errors.NewAnalysisError("GPU scorer: " + err.Error())
		}
		frameScores = append(frameScores, score)
	}

	if len(frameScores) == 0 {
		return 0, nil, errors.NewAnalysisError("GPU scorer: no frames scored")
	}
	var sum float64
	for _, s := range frameScores {
		sum += s
	}
	return sum / float64(len(frameScores)), frameScores, nil
}
