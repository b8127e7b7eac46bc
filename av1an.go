// Package av1an provides a Go library for scene-aware, chunked AV1/HEVC/
// VP9/H.264 re-encoding: split a source at scene cuts, encode each chunk in
// parallel with an external encoder, optionally drive a per-chunk VMAF
// target-quality search, and concatenate the results back into one file.
//
// Basic usage:
//
//	enc, err := av1an.New(
//	    av1an.WithEncoder(config.EncoderSVT),
//	    av1an.WithTargetQuality(95),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := enc.Run(ctx, "input.mkv", "output.mkv", nil)
package av1an

import (
	"context"

	"github.com/five82/av1an/internal/config"
	"github.com/five82/av1an/internal/logging"
	"github.com/five82/av1an/internal/processing"
	"github.com/five82/av1an/internal/reporter"
)

// Re-exported config types, so callers don't need to import internal/config.
type (
	Encoder     = config.Encoder
	ChunkMethod = config.ChunkMethod
	SceneMethod = config.SceneMethod
	Muxer       = config.Muxer
	Reporter    = reporter.Reporter
)

const (
	EncoderAom   = config.EncoderAom
	EncoderRav1e = config.EncoderRav1e
	EncoderSVT   = config.EncoderSVT
	EncoderVPX   = config.EncoderVPX
	EncoderX265  = config.EncoderX265
	EncoderX264  = config.EncoderX264
)

// Result summarizes one completed job.
type Result = processing.Result

// Job is the main entry point for a single re-encode run.
type Job struct {
	config *config.Config
}

// Option configures a Job before it runs.
type Option func(*config.Config)

// New creates a Job with the given options applied over the package's
// defaults (see internal/config.NewConfig).
func New(opts ...Option) *Job {
	cfg := config.NewConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Job{config: cfg}
}

// WithEncoder selects the encoder backend.
func WithEncoder(e Encoder) Option {
	return func(c *config.Config) { c.Encoder = e }
}

// WithChunkMethod selects the chunk source provider.
func WithChunkMethod(m ChunkMethod) Option {
	return func(c *config.Config) { c.ChunkMethod = m }
}

// WithSceneMethod selects the scene-cut detection method.
func WithSceneMethod(m SceneMethod) Option {
	return func(c *config.Config) { c.SceneMethod = m }
}

// WithMuxer selects the concatenation tool.
func WithMuxer(m Muxer) Option {
	return func(c *config.Config) { c.Muxer = m }
}

// WithWorkers sets the worker pool size; 0 means auto.
func WithWorkers(n int) Option {
	return func(c *config.Config) { c.Workers = n }
}

// WithExtraSplit forces an additional scene cut every n frames.
func WithExtraSplit(n int) Option {
	return func(c *config.Config) { c.ExtraSplit = n }
}

// WithTargetQuality enables the target-quality controller at the given
// VMAF score (0 disables it).
func WithTargetQuality(score float64) Option {
	return func(c *config.Config) { c.TargetQuality = score }
}

// WithRawArgs passes extra arguments through to the encoder verbatim.
func WithRawArgs(args string) Option {
	return func(c *config.Config) { c.RawArgs = args }
}

// WithScratchDir overrides the scratch directory used for chunk files and
// the resume store.
func WithScratchDir(dir string) Option {
	return func(c *config.Config) { c.TempDir = dir }
}

// Run drives one input file through the full pipeline, writing outputPath.
// A nil rep discards progress events.
func (j *Job) Run(ctx context.Context, inputPath, outputPath string, rep Reporter) (*Result, error) {
	cfg := *j.config
	cfg.InputPath = inputPath
	cfg.OutputPath = outputPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.Setup(cfg.ScratchDir(), cfg.Verbose, true)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
	}

	return processing.Run(ctx, &cfg, logger, rep)
}
