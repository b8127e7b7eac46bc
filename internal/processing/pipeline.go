// Package processing wires the Source Probe, Scene Splitter, Chunk
// Planner, Worker Pool, and Concatenator into a single job run.
package processing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/av1an/internal/chunk"
	"github.com/five82/av1an/internal/config"
	"github.com/five82/av1an/internal/encoder"
	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/ffprobe"
	"github.com/five82/av1an/internal/logging"
	"github.com/five82/av1an/internal/metric"
	"github.com/five82/av1an/internal/probe"
	"github.com/five82/av1an/internal/reporter"
	"github.com/five82/av1an/internal/resume"
	"github.com/five82/av1an/internal/scene"
	"github.com/five82/av1an/internal/source"
	"github.com/five82/av1an/internal/tq"
	"github.com/five82/av1an/internal/util"
	"github.com/five82/av1an/internal/validation"
	"github.com/five82/av1an/internal/videoinfo"
	"github.com/five82/av1an/internal/worker"
)

// Result summarizes one completed job for the caller.
type Result struct {
	OutputPath       string
	InputSize        uint64
	OutputSize       uint64
	Duration         time.Duration
	ChunksTotal      int
	AverageSpeed     float32
	ValidationPassed bool
}

// Run drives a single input through the full chunked re-encode pipeline:
// probe, scene split, chunk plan, parallel encode (with target-quality
// search when enabled), concatenate, and final mux. It returns before
// muxing when cfg.SceneOnly is set, leaving only the scenes cache behind.
func Run(ctx context.Context, cfg *config.Config, logger *logging.Logger, rep reporter.Reporter) (*Result, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	startTime := time.Now()

	rep.Hardware(reporter.HardwareSummary{Hostname: util.GetSystemInfo().Hostname})

	rep.StageProgress(reporter.StageProgress{Stage: "Probe", Message: "Analyzing source and detecting crop"})
	info, err := probeAndDetectCrop(ctx, cfg, rep)
	if err != nil {
		return nil, err
	}

	rep.StageProgress(reporter.StageProgress{Stage: "Scene Detection", Message: "Splitting source at scene cuts"})
	scenes, err := scene.Split(cfg.InputPath, info, scene.Method(cfg.SceneMethod), cfg.ScenesCachePath(), cfg.ExtraSplit, cfg.Verbose)
	if err != nil {
		return nil, err
	}
	rep.Verbose(fmt.Sprintf("Detected %d scenes", len(scenes)))

	if cfg.SceneOnly {
		rep.OperationComplete(fmt.Sprintf("Wrote %d scenes to %s", len(scenes), cfg.ScenesCachePath()))
		return &Result{ChunksTotal: len(scenes), Duration: time.Since(startTime)}, nil
	}

	variant, err := encoder.FromConfig(cfg.Encoder)
	if err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	builder, err := encoder.NewBuilder(variant)
	if err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	if err := encoder.CheckExternalTools(variant, cfg.Muxer); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}

	muxer := cfg.Muxer
	if req := variant.RequiredMuxer(); req != "" {
		muxer = req
	}

	passes := 1
	if variant.SupportsTwoPass() {
		passes = 2
	}

	if err := util.EnsureDirectory(cfg.SplitDir()); err != nil {
		return nil, errors.NewIOError("failed to create split directory", err)
	}
	chunks := chunk.Plan(scenes, variant, cfg.SplitDir(), passes)
	set := chunk.NewSet(chunks)
	rep.StageProgress(reporter.StageProgress{Stage: "Chunking", Message: fmt.Sprintf("Planned %d chunks", len(chunks))})

	resumeStore, err := resume.Load(cfg.DoneFilePath())
	if err != nil {
		return nil, err
	}
	for _, ch := range chunks {
		resumeStore.Verify(ch.Idx, ch.Frames(), segmentFrameCount)
	}

	extraArgs := splitRawArgs(cfg.RawArgs)
	var tqCfg *tq.Config
	if cfg.TargetQualityEnabled() {
		tqCfg = tq.DefaultConfig()
		tqCfg.Target = cfg.TargetQuality
		tqCfg.Tolerance = cfg.TQTolerance
		stripped, removed := encoder.StripQuantizerFlag(variant, extraArgs)
		extraArgs = stripped
		if removed {
			rep.Warning("target-quality is enabled; a user-supplied quantizer flag was ignored")
		}
	}

	provider, err := source.New(cfg.ChunkMethod)
	if err != nil {
		return nil, err
	}

	rep.StageProgress(reporter.StageProgress{Stage: "Encoding", Message: fmt.Sprintf("Encoding %d chunks with %s", len(chunks), variant)})
	rep.EncodingStarted(uint64(info.TotalFrames))

	encodeStart := time.Now()
	fps := info.FPS()
	onProgress := func(p worker.Progress) {
		var speed float32
		var eta time.Duration
		elapsed := time.Since(encodeStart).Seconds()
		if elapsed > 0 && p.FramesComplete > 0 && fps > 0 {
			videoSeconds := float64(p.FramesComplete) / fps
			speed = float32(videoSeconds / elapsed)
			if speed > 0 {
				remaining := float64(p.FramesTotal-p.FramesComplete) / fps
				eta = time.Duration(remaining/float64(speed)) * time.Second
			}
		}
		rep.EncodingProgress(reporter.ProgressSnapshot{
			CurrentFrame:   uint64(p.FramesComplete),
			TotalFrames:    uint64(p.FramesTotal),
			Percent:        float32(p.Percent()),
			Speed:          speed,
			ETA:            eta,
			ChunksComplete: p.ChunksComplete,
			ChunksTotal:    p.ChunksTotal,
		})
	}

	workerCfg := worker.Config{
		Variant:        variant,
		Builder:        builder,
		Provider:       provider,
		Info:           info,
		ExtraArgs:      extraArgs,
		Passes:         passes,
		Workers:        cfg.Workers,
		MemFraction:    0.7,
		Retries:        cfg.EncodeRetries,
		Resume:         resumeStore,
		Logger:         logger,
		ScratchDir:     cfg.SplitDir(),
		OnProgress:     onProgress,
		ProbeFailLimit: cfg.ProbeFailLimit,
	}
	var tqResultsMu sync.Mutex
	var tqResults []tq.ChunkResult
	if tqCfg != nil {
		workerCfg.TQ = tqCfg
		workerCfg.Scorer = metric.Scorer(metric.VMAFScorer{})
		if cfg.GPUMetric {
			workerCfg.Scorer = metric.GPUScorer{}
		}
		workerCfg.OnTQResult = func(r tq.ChunkResult) {
			tqResultsMu.Lock()
			tqResults = append(tqResults, r)
			tqResultsMu.Unlock()
		}
	}

	// Video encoding and audio extraction touch disjoint inputs (chunk
	// segments vs. the original container's audio streams) and disjoint
	// outputs, so they run concurrently rather than one after the other.
	audioPath := chunk.AudioPath(cfg.ScratchDir())
	var audioStreams []ffprobe.AudioStreamInfo
	encodeGroup, _ := errgroup.WithContext(ctx)
	encodeGroup.Go(func() error {
		return worker.Run(ctx, cfg.InputPath, chunks, set, workerCfg)
	})
	encodeGroup.Go(func() error {
		audioStreams = AnalyzeAndLogAudioDetailed(cfg.InputPath, audioLogger{rep})
		if len(audioStreams) == 0 {
			return nil
		}
		rep.StageProgress(reporter.StageProgress{Stage: "Audio", Message: "Copying audio streams"})
		return chunk.ExtractAudio(cfg.InputPath, audioPath, audioStreams)
	})
	if err := encodeGroup.Wait(); err != nil {
		return nil, err
	}

	if tqCfg != nil && cfg.Verbose {
		stats := tq.ComputeStats(tqResults, fps, tqCfg.MaxRounds)
		tq.Summarize(stats, rep, tqCfg.Target-tqCfg.Tolerance, tqCfg.Target+tqCfg.Tolerance, tqResults, fps)
	}

	rep.StageProgress(reporter.StageProgress{Stage: "Merging", Message: "Concatenating encoded segments"})
	merged := set.All()
	if err := chunk.Merge(merged, info.FPSNum, info.FPSDen, muxer, chunk.MergedVideoPath(cfg.ScratchDir()), cfg.ScratchDir()); err != nil {
		return nil, err
	}

	rep.StageProgress(reporter.StageProgress{Stage: "Muxing", Message: "Writing final output"})
	if err := chunk.MuxFinal(chunk.MergedVideoPath(cfg.ScratchDir()), audioPath, cfg.InputPath, cfg.OutputPath); err != nil {
		return nil, err
	}

	if cfg.ScoreFinal {
		rep.StageProgress(reporter.StageProgress{Stage: "Scoring", Message: "Scoring final output against source"})
		score, _, err := (metric.VMAFScorer{}).Score(ctx, cfg.InputPath, cfg.OutputPath, fps)
		if err != nil {
			rep.Warning(fmt.Sprintf("final VMAF scoring failed: %v", err))
		} else {
			rep.Verbose(fmt.Sprintf("Final output VMAF: %.2f", score))
		}
	}

	rep.StageProgress(reporter.StageProgress{Stage: "Validating", Message: "Checking final output against the source"})
	validationPassed := validateFinalOutput(cfg, info, variant, audioStreams, rep)

	inputSize, _ := util.GetFileSize(cfg.InputPath)
	outputSize, _ := util.GetFileSize(cfg.OutputPath)
	duration := time.Since(startTime)

	var avgSpeed float32
	if duration.Seconds() > 0 && fps > 0 {
		avgSpeed = float32(float64(info.TotalFrames) / fps / duration.Seconds())
	}

	rep.EncodingComplete(reporter.EncodingOutcome{
		InputFile:    util.GetFilename(cfg.InputPath),
		OutputFile:   util.GetFilename(cfg.OutputPath),
		OriginalSize: inputSize,
		EncodedSize:  outputSize,
		VideoStream:  fmt.Sprintf("%s, %dx%d", variant, info.CroppedWidth(), info.CroppedHeight()),
		AudioStream:  GenerateAudioResultsDescription(nil, audioStreams),
		TotalTime:    duration,
		AverageSpeed: avgSpeed,
		OutputPath:   cfg.OutputPath,
	})
	rep.OperationComplete(fmt.Sprintf("Encoded %s", util.GetFilename(cfg.OutputPath)))

	return &Result{
		OutputPath:       cfg.OutputPath,
		InputSize:        inputSize,
		OutputSize:       outputSize,
		Duration:         duration,
		ChunksTotal:      len(chunks),
		AverageSpeed:     avgSpeed,
		ValidationPassed: validationPassed,
	}, nil
}

// probeAndDetectCrop runs the source probe and black-bar crop detection
// concurrently, since neither depends on the other's result: crop detection
// only needs ffprobe's stream properties, which the full probe also
// gathers independently. The detected crop filter, if any, is folded into
// the returned VideoInfo so every downstream stage sees the cropped
// dimensions.
func probeAndDetectCrop(ctx context.Context, cfg *config.Config, rep reporter.Reporter) (*videoinfo.VideoInfo, error) {
	var info *videoinfo.VideoInfo
	var cropResult CropResult

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = probe.Probe(cfg.InputPath)
		return err
	})
	g.Go(func() error {
		props, err := ffprobe.GetVideoProperties(cfg.InputPath)
		if err != nil {
			return err
		}
		cropResult = DetectCrop(cfg.InputPath, props, cfg.DisableCrop)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cropResult.Required {
		info.CropFilter = cropResult.CropFilter
	}
	rep.CropResult(reporter.CropSummary{
		Message:  cropResult.Message,
		Crop:     cropResult.CropFilter,
		Required: cropResult.Required,
		Disabled: cfg.DisableCrop,
	})
	return info, nil
}

// splitRawArgs splits the -v flag's single verbatim string into an argv
// slice.
func splitRawArgs(raw string) []string {
	return strings.Fields(raw)
}

// segmentFrameCount reports how many frames an encoded chunk segment
// carries, for resume.Store.Verify to compare against the plan.
func segmentFrameCount(path string) (int, error) {
	info, err := ffprobe.GetMediaInfo(path)
	if err != nil {
		return 0, err
	}
	return int(info.TotalFrames), nil
}

// validateFinalOutput checks the muxed output against the probed source:
// codec, bit depth, dimensions, duration, HDR status, and that every audio
// track was copied through with its source codec intact. Failures are
// reported as warnings rather than aborting the job, since by this point
// the encode itself has already succeeded.
func validateFinalOutput(cfg *config.Config, info *videoinfo.VideoInfo, variant encoder.Variant, audioStreams []ffprobe.AudioStreamInfo, rep reporter.Reporter) bool {
	expectedDims := [2]uint32{uint32(info.CroppedWidth()), uint32(info.CroppedHeight())}
	expectedDuration := float64(info.TotalFrames) / info.FPS()
	expectedHDR := info.Color.MasteringDisplay != nil || info.Color.ContentLight != nil
	expectedTracks := len(audioStreams)
	expectedCodecs := make([]string, len(audioStreams))
	expectedChannels := make([]uint32, len(audioStreams))
	for i, s := range audioStreams {
		expectedCodecs[i] = s.CodecName
		expectedChannels[i] = uint32(s.Channels)
	}

	result, err := validation.ValidateOutputVideo(cfg.InputPath, cfg.OutputPath, validation.Options{
		ExpectedCodec:         variant.CodecName(),
		ExpectedDimensions:    &expectedDims,
		ExpectedDuration:      &expectedDuration,
		ExpectedHDR:           &expectedHDR,
		ExpectedAudioTracks:   &expectedTracks,
		ExpectedAudioChannels: expectedChannels,
		ExpectedAudioCodecs:   expectedCodecs,
	})
	if err != nil {
		rep.Warning(fmt.Sprintf("output validation failed to run: %v", err))
		return false
	}

	steps := result.GetValidationSteps()
	reportSteps := make([]reporter.ValidationStep, len(steps))
	for i, s := range steps {
		reportSteps[i] = reporter.ValidationStep{Name: s.Name, Passed: s.Passed, Details: s.Details}
	}
	passed := result.IsValid()
	rep.ValidationComplete(reporter.ValidationSummary{Passed: passed, Steps: reportSteps})
	return passed
}

// audioLogger adapts a reporter.Reporter into the Logger interface expected
// by AnalyzeAndLogAudioDetailed.
type audioLogger struct {
	rep reporter.Reporter
}

func (l audioLogger) Info(format string, args ...any) {
	l.rep.Verbose(fmt.Sprintf(format, args...))
}

func (l audioLogger) Warn(format string, args ...any) {
	l.rep.Warning(fmt.Sprintf(format, args...))
}
