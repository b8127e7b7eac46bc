// Package config provides the job configuration built from the av1an CLI
// flags: input/output paths, encoder selection, chunking and scene-cut
// method, worker count, target-quality controller settings, and the
// scratch directory layout.
package config

import (
	"fmt"
	"path/filepath"
)

// Default constants.
const (
	// DefaultWorkers is used when -w is not given; the worker pool still
	// caps this down based on available memory at encode time.
	DefaultWorkers int = 0 // 0 means "auto": size from CPU count and memory.

	// DefaultChunkMethod is the chunk source provider used when
	// --chunk-method is not given.
	DefaultChunkMethod = ChunkMethodHybrid

	// DefaultSceneMethod is the scene-cut detection method used when
	// --sc-method is not given.
	DefaultSceneMethod = SceneMethodStandard

	// DefaultMuxer is used when -c is not given.
	DefaultMuxer = MuxerFFmpeg

	// DefaultTargetQualityTolerance is how close to the target VMAF score
	// the controller must converge before accepting a probe's quantizer.
	DefaultTargetQualityTolerance float64 = 1.0

	// DefaultEncodeRetries is how many times the worker pool retries a
	// chunk whose encoder child exits nonzero before failing the job.
	DefaultEncodeRetries int = 3

	// DefaultProbeFailureLimit aborts a chunk's target-quality search
	// after this many consecutive probe failures.
	DefaultProbeFailureLimit int = 2
)

// Encoder identifies one of the six supported encoder backends.
type Encoder string

const (
	EncoderAom   Encoder = "aom"
	EncoderRav1e Encoder = "rav1e"
	EncoderSVT   Encoder = "svt-av1"
	EncoderVPX   Encoder = "vpx"
	EncoderX265  Encoder = "x265"
	EncoderX264  Encoder = "x264"
)

// ChunkMethod identifies a Chunk Source Provider strategy.
type ChunkMethod string

const (
	ChunkMethodHybrid ChunkMethod = "hybrid"
	ChunkMethodSelect ChunkMethod = "select"
	ChunkMethodFFMS2  ChunkMethod = "ffms2"
	ChunkMethodLSMASH ChunkMethod = "lsmash"
)

// SceneMethod identifies a scene-cut detection strategy.
type SceneMethod string

const (
	SceneMethodFast     SceneMethod = "fast"
	SceneMethodStandard SceneMethod = "standard"
)

// Muxer identifies the tool used to concatenate encoded segments.
type Muxer string

const (
	MuxerFFmpeg   Muxer = "ffmpeg"
	MuxerMkvmerge Muxer = "mkvmerge"
)

// Config holds a fully resolved job configuration, built from CLI flags.
type Config struct {
	// Input/output
	InputPath  string
	OutputPath string
	Overwrite  bool // -y

	// Encoder selection
	Encoder      Encoder // -e
	RawArgs      string  // -v, passed through to the encoder verbatim
	PixelFormat  string  // --pix-format

	// Chunking
	ChunkMethod ChunkMethod // --chunk-method
	SceneMethod SceneMethod // --sc-method
	ScenesPath  string      // -s
	SceneOnly   bool        // --sc-only
	ExtraSplit  int         // -x, 0 means disabled
	DisableCrop bool        // --disable-crop

	// Parallelism
	Workers int // -w, 0 means auto

	// Muxing
	Muxer Muxer // -c

	// Target-quality controller
	TargetQuality   float64 // --target-quality, 0 means disabled
	ProbeSlow       bool    // --probe-slow
	ScoreFinal      bool    // --vmaf
	GPUMetric       bool    // --gpu-metric, scores probes with vship's SSIMULACRA2 instead of libvmaf
	TQTolerance     float64
	EncodeRetries   int
	ProbeFailLimit  int

	// Scratch / logging
	TempDir string // --temp
	LogFile string // --log-file

	Verbose bool
}

// NewConfig returns a Config populated with defaults; CLI flag parsing
// overrides fields on top of this before Validate is called.
func NewConfig() *Config {
	return &Config{
		ChunkMethod:    DefaultChunkMethod,
		SceneMethod:    DefaultSceneMethod,
		Muxer:          DefaultMuxer,
		Workers:        DefaultWorkers,
		TQTolerance:    DefaultTargetQualityTolerance,
		EncodeRetries:  DefaultEncodeRetries,
		ProbeFailLimit: DefaultProbeFailLimit,
		PixelFormat:    "yuv420p",
	}
}

// TargetQualityEnabled reports whether the target-quality controller
// should run for this job.
func (c *Config) TargetQualityEnabled() bool {
	return c.TargetQuality > 0
}

// Validate checks the configuration for contradictory or missing flags,
// returning a ConfigError-kind error (see internal/errors) on failure.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: -i is required", ErrMissingInput)
	}
	if c.OutputPath == "" && !c.SceneOnly {
		return fmt.Errorf("%w: -o is required unless --sc-only", ErrMissingOutput)
	}

	switch c.Encoder {
	case EncoderAom, EncoderRav1e, EncoderSVT, EncoderVPX, EncoderX265, EncoderX264, "":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEncoder, c.Encoder)
	}

	switch c.ChunkMethod {
	case ChunkMethodHybrid, ChunkMethodSelect, ChunkMethodFFMS2, ChunkMethodLSMASH:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChunkMethod, c.ChunkMethod)
	}

	switch c.SceneMethod {
	case SceneMethodFast, SceneMethodStandard:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSceneMethod, c.SceneMethod)
	}

	switch c.Muxer {
	case MuxerFFmpeg, MuxerMkvmerge:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMuxer, c.Muxer)
	}

	if c.TargetQuality < 0 || c.TargetQuality > 100 {
		return fmt.Errorf("%w: target-quality must be 0-100, got %g", ErrInvalidTargetQuality, c.TargetQuality)
	}

	if c.ExtraSplit < 0 {
		return fmt.Errorf("%w: extra-split must be non-negative, got %d", ErrInvalidExtraSplit, c.ExtraSplit)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidWorkers, c.Workers)
	}

	return nil
}

// ScratchDir returns the scratch directory for this job, defaulting to a
// ".av1an" directory next to the output file when --temp is not given.
func (c *Config) ScratchDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	base := c.OutputPath
	if base == "" {
		base = c.InputPath
	}
	return filepath.Join(filepath.Dir(base), ".av1an")
}

// SplitDir returns the scratch subdirectory holding encoded segments.
func (c *Config) SplitDir() string {
	return filepath.Join(c.ScratchDir(), "split")
}

// DoneFilePath returns the resume store path within the scratch directory.
func (c *Config) DoneFilePath() string {
	return filepath.Join(c.ScratchDir(), "done.json")
}

// ScenesCachePath returns the default cached-scenes path within the
// scratch directory, used when -s is not given.
func (c *Config) ScenesCachePath() string {
	if c.ScenesPath != "" {
		return c.ScenesPath
	}
	return filepath.Join(c.ScratchDir(), "scenes.json")
}
