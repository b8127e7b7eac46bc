package processing

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/five82/av1an/internal/ffprobe"
)

// GetAudioChannels returns audio channel counts for a file.
func GetAudioChannels(inputPath string) []uint32 {
	channels, err := ffprobe.GetAudioChannels(inputPath)
	if err != nil {
		return nil
	}
	return channels
}

// GetAudioStreamInfo returns detailed audio stream information.
func GetAudioStreamInfo(inputPath string) []ffprobe.AudioStreamInfo {
	streams, err := ffprobe.GetAudioStreamInfo(inputPath)
	if err != nil {
		return nil
	}
	return streams
}

// FormatAudioDescription formats a basic audio description.
func FormatAudioDescription(channels []uint32) string {
	if len(channels) == 0 {
		return "No audio"
	}

	if len(channels) == 1 {
		return fmt.Sprintf("%d channels", channels[0])
	}

	var parts []string
	for i, ch := range channels {
		parts = append(parts, fmt.Sprintf("Stream %d (%dch)", i, ch))
	}
	return fmt.Sprintf("%d streams: %s", len(channels), strings.Join(parts, ", "))
}

// FormatAudioDescriptionConfig formats audio description for config display.
// Audio streams are copied verbatim, so this reports codec and channel
// layout rather than a target bitrate.
func FormatAudioDescriptionConfig(channels []uint32, streams []ffprobe.AudioStreamInfo) string {
	if streams == nil {
		return FormatAudioDescription(channels)
	}

	if len(streams) == 0 {
		return "No audio"
	}

	if len(streams) == 1 {
		stream := streams[0]
		return fmt.Sprintf("%d channels, %s (copied)", stream.Channels, stream.CodecName)
	}

	var parts []string
	for _, stream := range streams {
		parts = append(parts, fmt.Sprintf("Stream %d: %dch %s", stream.Index, stream.Channels, stream.CodecName))
	}
	return strings.Join(parts, ", ") + " (copied)"
}

// GenerateAudioResultsDescription generates an audio description for the
// final job summary. Streams are copied unmodified from the source.
func GenerateAudioResultsDescription(channels []uint32, streams []ffprobe.AudioStreamInfo) string {
	if len(streams) > 0 {
		if len(streams) == 1 {
			return fmt.Sprintf("%s %dch (copied)", streams[0].CodecName, streams[0].Channels)
		}

		var parts []string
		for _, stream := range streams {
			parts = append(parts, fmt.Sprintf("%s %dch", stream.CodecName, stream.Channels))
		}
		return fmt.Sprintf("copied (%s)", strings.Join(parts, ", "))
	}

	if len(channels) == 0 {
		return "No audio"
	}

	if len(channels) == 1 {
		return fmt.Sprintf("%dch (copied)", channels[0])
	}

	var parts []string
	for _, ch := range channels {
		parts = append(parts, fmt.Sprintf("%dch", ch))
	}
	return fmt.Sprintf("copied (%s)", strings.Join(parts, ", "))
}

// Logger defines the interface for audio analysis logging.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// DefaultLogger implements Logger using the standard log package.
type DefaultLogger struct{}

func (d DefaultLogger) Info(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

func (d DefaultLogger) Warn(format string, args ...any) {
	log.Printf("[WARN] "+format, args...)
}

// AnalyzeAndLogAudio analyzes audio streams and logs channel information.
// Returns channel counts for the mux stage. Returns nil on error (non-critical operation).
func AnalyzeAndLogAudio(inputPath string, logger Logger) []uint32 {
	if logger == nil {
		logger = DefaultLogger{}
	}

	filename := filepath.Base(inputPath)

	audioChannels, err := ffprobe.GetAudioChannels(inputPath)
	if err != nil {
		logger.Warn("Error getting audio channels for %s: %v. Using empty list.", filename, err)
		logger.Info("Audio streams: Error detecting audio")
		return nil
	}

	if len(audioChannels) == 0 {
		logger.Info("Audio streams: None detected")
		return nil
	}

	var channelSummary string
	if len(audioChannels) == 1 {
		channelSummary = fmt.Sprintf("%d channels", audioChannels[0])
	} else {
		var parts []string
		for i, ch := range audioChannels {
			parts = append(parts, fmt.Sprintf("Stream %d (%dch)", i, ch))
		}
		channelSummary = fmt.Sprintf("%d streams: %s", len(audioChannels), strings.Join(parts, ", "))
	}
	logger.Info("Audio: %s (copied to output unmodified)", channelSummary)

	return audioChannels
}

// AnalyzeAndLogAudioDetailed analyzes audio streams and returns detailed stream information.
// Also logs audio stream details. Returns nil on error (non-critical operation).
func AnalyzeAndLogAudioDetailed(inputPath string, logger Logger) []ffprobe.AudioStreamInfo {
	if logger == nil {
		logger = DefaultLogger{}
	}

	filename := filepath.Base(inputPath)

	audioStreams, err := ffprobe.GetAudioStreamInfo(inputPath)
	if err != nil {
		logger.Warn("Error getting audio stream info for %s: %v. Using fallback.", filename, err)
		logger.Info("Audio streams: Error detecting audio details")
		return nil
	}

	if len(audioStreams) == 0 {
		logger.Info("Audio streams: None detected")
		return audioStreams
	}

	logger.Info("Detected %d audio stream(s)", len(audioStreams))
	for _, stream := range audioStreams {
		logger.Info("Stream %d: codec=%s, profile=%s, channels=%d, spatial=%v (copied to output)",
			stream.Index, stream.CodecName, stream.Profile, stream.Channels, stream.IsSpatial)
	}

	return audioStreams
}

// GetAudioChannelsQuiet analyzes audio streams and returns channel information without logging.
// Returns nil on error (non-critical operation).
func GetAudioChannelsQuiet(inputPath string) []uint32 {
	channels, err := ffprobe.GetAudioChannels(inputPath)
	if err != nil {
		return nil
	}
	return channels
}
