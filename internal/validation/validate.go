package validation

import (
	"fmt"
	"math"
	"strings"
)

const (
	// durationToleranceSecs is the maximum allowed difference in duration between input and output.
	durationToleranceSecs = 1.0
	// maxSyncDriftMs is the maximum allowed audio/video sync drift in milliseconds.
	maxSyncDriftMs = 100.0
	// requiredBitDepth is the minimum bit depth required for the encoded output.
	requiredBitDepth = 10
)

// Options contains optional parameters for validation.
type Options struct {
	// ExpectedCodec is the ffprobe codec_name substring the muxed output's
	// video stream must contain, e.g. encoder.Variant.CodecName(). Checked
	// case-insensitively. Left empty, the codec check always passes.
	ExpectedCodec string

	ExpectedDimensions *[2]uint32
	ExpectedDuration   *float64
	ExpectedHDR        *bool

	ExpectedAudioTracks   *int
	ExpectedAudioChannels []uint32
	// ExpectedAudioCodecs holds the source's per-track codec names, since
	// audio streams are copied through rather than re-encoded. A mismatch
	// means the final mux did not pass the source audio through intact.
	ExpectedAudioCodecs []string
}

// ValidateOutputVideo performs comprehensive validation of an encoded video.
// It delegates to ValidateWithAnalyzer using the DefaultAnalyzer.
func ValidateOutputVideo(inputPath, outputPath string, opts Options) (*Result, error) {
	return ValidateWithAnalyzer(NewDefaultAnalyzer(), outputPath, opts)
}

// validateDimensions checks that dimensions match expected values.
func validateDimensions(actualW, actualH, expectedW, expectedH uint32) (bool, string) {
	if actualW == expectedW && actualH == expectedH {
		return true, fmt.Sprintf("Dimensions match: %dx%d", actualW, actualH)
	}
	return false, fmt.Sprintf("Dimension mismatch: got %dx%d, expected %dx%d",
		actualW, actualH, expectedW, expectedH)
}

// validateDuration checks that duration is within acceptable tolerance.
func validateDuration(actual, expected float64) (bool, string) {
	diff := math.Abs(actual - expected)

	if diff <= durationToleranceSecs {
		return true, fmt.Sprintf("Duration matches input (%.1fs)", actual)
	}
	return false, fmt.Sprintf("Duration mismatch: got %.1fs, expected %.1fs (diff: %.1fs)",
		actual, expected, diff)
}

// validateSync checks audio/video sync drift.
func validateSync(outputDuration, inputDuration float64) (bool, *float64, string) {
	// Calculate drift in milliseconds
	driftMs := math.Abs(outputDuration-inputDuration) * 1000
	preserved := driftMs <= maxSyncDriftMs

	message := fmt.Sprintf("Audio/video sync preserved (drift: %.1fms)", driftMs)
	if !preserved {
		message = fmt.Sprintf("Audio/video sync drift too large: %.1fms (max: %.1fms)", driftMs, maxSyncDriftMs)
	}

	return preserved, &driftMs, message
}

// ValidateWithAnalyzer performs validation using a MediaAnalyzer interface.
// This allows for testing without external tool dependencies.
func ValidateWithAnalyzer(analyzer MediaAnalyzer, outputPath string, opts Options) (*Result, error) {
	result := &Result{
		IsCropCorrect:            true,
		IsDurationCorrect:        true,
		IsHDRCorrect:             true,
		IsAudioCodecPreserved:    true,
		IsAudioTrackCountCorrect: true,
		IsSyncPreserved:          true,
	}

	// Get output video properties
	outputProps, err := analyzer.GetVideoProperties(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get output video properties: %w", err)
	}

	// Validate video codec against whichever variant encoded the job.
	result.ExpectedCodecName = opts.ExpectedCodec
	codecName, err := analyzer.GetVideoCodec(outputPath)
	if err != nil {
		result.IsCodecCorrect = opts.ExpectedCodec == ""
		result.CodecName = ""
	} else {
		result.CodecName = codecName
		if opts.ExpectedCodec == "" {
			result.IsCodecCorrect = true
		} else {
			result.IsCodecCorrect = strings.Contains(strings.ToLower(codecName), strings.ToLower(opts.ExpectedCodec))
		}
	}

	// Validate bit depth
	if outputProps.BitDepth != nil {
		result.Is10Bit = *outputProps.BitDepth >= requiredBitDepth
		result.BitDepth = outputProps.BitDepth
	} else {
		// Try HDR info for bit depth
		hdrInfo, err := analyzer.GetHDRInfo(outputPath)
		if err == nil && hdrInfo.BitDepth != nil {
			result.Is10Bit = *hdrInfo.BitDepth >= requiredBitDepth
			result.BitDepth = hdrInfo.BitDepth
		} else {
			// FFMS2 always decodes to 10-bit; default accordingly.
			defaultDepth := uint8(10)
			result.Is10Bit = true
			result.BitDepth = &defaultDepth
		}
	}

	// Validate dimensions if expected
	if opts.ExpectedDimensions != nil {
		result.ActualDimensions = &[2]uint32{outputProps.Width, outputProps.Height}
		result.ExpectedDimensions = opts.ExpectedDimensions
		result.IsCropCorrect, result.CropMessage = validateDimensions(
			outputProps.Width, outputProps.Height,
			opts.ExpectedDimensions[0], opts.ExpectedDimensions[1],
		)
	} else {
		result.CropMessage = "No crop validation required"
	}

	// Validate duration if expected
	if opts.ExpectedDuration != nil {
		actualDur := outputProps.DurationSecs
		result.ActualDuration = &actualDur
		result.ExpectedDuration = opts.ExpectedDuration
		result.IsDurationCorrect, result.DurationMessage = validateDuration(actualDur, *opts.ExpectedDuration)
	} else {
		result.DurationMessage = "Duration validation skipped"
	}

	// Validate HDR status if expected
	if opts.ExpectedHDR != nil {
		if !analyzer.IsHDRDetectionAvailable() {
			result.IsHDRCorrect = true
			result.HDRMessage = "HDR detection not available - validation skipped"
		} else {
			hdrInfo, err := analyzer.GetHDRInfo(outputPath)
			if err != nil {
				result.IsHDRCorrect = false
				result.HDRMessage = "Failed to detect HDR status"
			} else {
				result.ActualHDR = &hdrInfo.IsHDR
				result.ExpectedHDR = opts.ExpectedHDR
				if *opts.ExpectedHDR == hdrInfo.IsHDR {
					status := "SDR"
					if hdrInfo.IsHDR {
						status = "HDR"
					}
					result.IsHDRCorrect = true
					result.HDRMessage = status + " preserved"
				} else {
					expectedStr := "SDR"
					if *opts.ExpectedHDR {
						expectedStr = "HDR"
					}
					actualStr := "SDR"
					if hdrInfo.IsHDR {
						actualStr = "HDR"
					}
					result.IsHDRCorrect = false
					result.HDRMessage = "Expected " + expectedStr + ", found " + actualStr
				}
			}
		}
	} else {
		// No expected HDR, but still detect actual status for reporting
		if analyzer.IsHDRDetectionAvailable() {
			hdrInfo, err := analyzer.GetHDRInfo(outputPath)
			if err == nil {
				result.ActualHDR = &hdrInfo.IsHDR
				status := "SDR"
				if hdrInfo.IsHDR {
					status = "HDR"
				}
				result.HDRMessage = "Output is " + status
			}
		}
		result.IsHDRCorrect = true // No expectation means always valid
	}

	// Validate audio
	audioStreams, err := analyzer.GetAudioStreams(outputPath)
	if err != nil {
		result.AudioMessage = "Failed to get audio info"
	} else {
		result.IsAudioCodecPreserved, result.IsAudioTrackCountCorrect, result.AudioCodecs, result.AudioMessage = validateAudioStreams(
			audioStreams, opts.ExpectedAudioTracks, opts.ExpectedAudioCodecs,
		)
	}

	// Validate A/V sync
	if opts.ExpectedDuration != nil {
		result.IsSyncPreserved, result.SyncDriftMs, result.SyncMessage = validateSync(
			outputProps.DurationSecs, *opts.ExpectedDuration,
		)
	} else {
		result.SyncMessage = "Sync validation skipped"
	}

	return result, nil
}

// validateAudioStreams checks that each audio track's codec survived the
// copy-through mux unchanged, and that the track count matches. Audio is
// never re-encoded by this pipeline, so "preserved" rather than any
// specific target codec is the correctness bar.
func validateAudioStreams(streams []AnalyzerAudioStream, expectedTracks *int, expectedCodecs []string) (bool, bool, []string, string) {
	codecs := make([]string, len(streams))
	for i, stream := range streams {
		codecs[i] = strings.ToLower(stream.Codec)
	}

	preserved := true
	if len(expectedCodecs) > 0 {
		if len(codecs) != len(expectedCodecs) {
			preserved = false
		} else {
			for i, codec := range codecs {
				if codec != strings.ToLower(expectedCodecs[i]) {
					preserved = false
					break
				}
			}
		}
	}

	trackCountCorrect := true
	if expectedTracks != nil {
		trackCountCorrect = len(streams) == *expectedTracks
	}

	var message string
	switch {
	case len(streams) == 0:
		message = "No audio tracks"
	case len(streams) == 1:
		if preserved {
			message = fmt.Sprintf("Audio track is %s (preserved from source)", codecs[0])
		} else {
			message = fmt.Sprintf("Audio track is %s", codecs[0])
		}
	default:
		if preserved {
			message = fmt.Sprintf("%d audio tracks, all preserved from source: %s", len(streams), strings.Join(codecs, ", "))
		} else {
			message = fmt.Sprintf("%d audio tracks: %s", len(streams), strings.Join(codecs, ", "))
		}
	}

	return preserved, trackCountCorrect, codecs, message
}
