// Package main provides the av1an CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/av1an/internal/config"
	"github.com/five82/av1an/internal/discovery"
	"github.com/five82/av1an/internal/logging"
	"github.com/five82/av1an/internal/processing"
	"github.com/five82/av1an/internal/reporter"
	"github.com/five82/av1an/internal/util"
)

const appVersion = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.NewConfig()
	var logFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "av1an",
		Short:         "Scene-aware, chunked video re-encoding",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, logFile, jsonOutput)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.InputPath, "input", "i", "", "input video file, or a directory of video files to batch-encode (required)")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "output video file, or output directory when -i is a directory (required unless --sc-only)")
	flags.BoolVarP(&cfg.Overwrite, "yes", "y", false, "overwrite the output file if it exists")
	flags.StringVarP((*string)(&cfg.Encoder), "encoder", "e", string(config.EncoderSVT), "encoder: aom, rav1e, svt-av1, vpx, x265, x264")
	flags.StringVarP(&cfg.RawArgs, "video-params", "v", "", "extra arguments passed through to the encoder verbatim")
	flags.StringVar(&cfg.PixelFormat, "pix-format", cfg.PixelFormat, "pixel format passed to the chunk source and encoder")
	flags.StringVar((*string)(&cfg.ChunkMethod), "chunk-method", string(cfg.ChunkMethod), "chunk source provider: hybrid, select, ffms2, lsmash")
	flags.StringVar((*string)(&cfg.SceneMethod), "sc-method", string(cfg.SceneMethod), "scene-cut method: fast, standard")
	flags.StringVarP(&cfg.ScenesPath, "scenes", "s", "", "path to a scenes JSON file (read if present, else written)")
	flags.BoolVar(&cfg.SceneOnly, "sc-only", false, "only run scene detection and write the scenes file, then exit")
	flags.IntVarP(&cfg.ExtraSplit, "extra-split", "x", 0, "force an additional scene cut every N frames (0 disables)")
	flags.BoolVar(&cfg.DisableCrop, "disable-crop", false, "skip automatic black-bar crop detection")
	flags.IntVarP(&cfg.Workers, "workers", "w", 0, "number of parallel encoder workers (0: auto)")
	flags.StringVarP((*string)(&cfg.Muxer), "muxer", "c", string(cfg.Muxer), "concatenation tool: ffmpeg, mkvmerge")
	flags.Float64Var(&cfg.TargetQuality, "target-quality", 0, "enable the target-quality controller at this VMAF score (0 disables)")
	flags.BoolVar(&cfg.ProbeSlow, "probe-slow", false, "use full-chunk probes instead of sampled probes during target-quality search")
	flags.BoolVar(&cfg.ScoreFinal, "vmaf", false, "score the final encoded output against the source with VMAF")
	flags.BoolVar(&cfg.GPUMetric, "gpu-metric", false, "score target-quality probes with vship's GPU-accelerated SSIMULACRA2 instead of libvmaf")
	flags.Float64Var(&cfg.TQTolerance, "target-quality-tolerance", cfg.TQTolerance, "VMAF tolerance the target-quality controller converges within")
	flags.IntVar(&cfg.EncodeRetries, "encode-retries", cfg.EncodeRetries, "retries for a chunk whose encoder exits nonzero")
	flags.IntVar(&cfg.ProbeFailLimit, "probe-fail-limit", cfg.ProbeFailLimit, "abort a chunk's search after this many consecutive probe failures")
	flags.StringVar(&cfg.TempDir, "temp", "", "scratch directory (default: .av1an next to the output file)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of the default state directory")
	flags.BoolVarP(&cfg.Verbose, "verbose", "V", false, "enable verbose logging and debug statistics")
	flags.BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON progress events instead of a terminal UI")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logFile string, jsonOutput bool) error {
	if cfg.InputPath != "" {
		if abs, err := filepath.Abs(cfg.InputPath); err == nil {
			cfg.InputPath = abs
		}
	}
	if cfg.OutputPath != "" {
		if abs, err := filepath.Abs(cfg.OutputPath); err == nil {
			cfg.OutputPath = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	inputInfo, err := os.Stat(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("input path does not exist: %s", cfg.InputPath)
	}

	if !inputInfo.IsDir() && cfg.OutputPath != "" {
		outInfo, err := util.ResolveOutputArg(cfg.InputPath, cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("invalid output path %s: only a directory or a .mkv filename is accepted", cfg.OutputPath)
		}
		if outInfo.FilenameOverride == "" {
			if err := util.EnsureDirectory(outInfo.OutputDir); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		cfg.OutputPath = util.ResolveOutputPath(cfg.InputPath, outInfo.OutputDir, outInfo.FilenameOverride)
	}
	if !inputInfo.IsDir() && !cfg.Overwrite && cfg.OutputPath != "" {
		if _, err := os.Stat(cfg.OutputPath); err == nil {
			return fmt.Errorf("output file %s already exists (pass -y to overwrite)", cfg.OutputPath)
		}
	}

	logDir := cfg.ScratchDir()
	if logFile != "" {
		logDir = filepath.Dir(logFile)
		cfg.LogFile = logFile
	}
	logger, err := logging.Setup(logDir, cfg.Verbose, false)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
	}

	var rep reporter.Reporter
	if jsonOutput {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	if !inputInfo.IsDir() {
		_, err = processing.Run(runCtx, cfg, logger, rep)
		return err
	}
	return runBatch(runCtx, cfg, logger, rep)
}

// runBatch discovers the video files under a directory input and runs each
// through processing.Run in turn, reusing cfg's settings for every file.
// cfg.OutputPath is treated as the destination directory; each file's
// output name keeps its basename with an .mkv extension, since that's the
// one container every supported encoder/muxer combination can write.
func runBatch(ctx context.Context, cfg *config.Config, logger *logging.Logger, rep reporter.Reporter) error {
	files, err := discovery.FindVideoFilesWithLogging(cfg.InputPath, logger)
	if err != nil {
		return err
	}

	outputDir := cfg.OutputPath
	if outputDir != "" {
		if err := util.EnsureDirectory(outputDir); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	rep.BatchStarted(reporter.BatchStartInfo{TotalFiles: len(files.Files), FileList: files.Files, OutputDir: outputDir})

	var errs []error
	var successCount, validationPassedCount int
	var totalOriginal, totalEncoded uint64
	var totalDuration time.Duration
	var totalVideoSeconds float64
	var fileResults []reporter.FileResult

	for i, inputPath := range files.Files {
		rep.FileProgress(reporter.FileProgressContext{CurrentFile: i + 1, TotalFiles: len(files.Files)})

		fileCfg := *cfg
		fileCfg.InputPath = inputPath
		if outputDir != "" && !fileCfg.SceneOnly {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			fileCfg.OutputPath = filepath.Join(outputDir, base+".mkv")
		}

		result, err := processing.Run(ctx, &fileCfg, logger, rep)
		if err != nil {
			logger.Error("failed to encode %s: %v", inputPath, err)
			errs = append(errs, fmt.Errorf("%s: %w", inputPath, err))
			continue
		}

		successCount++
		if result == nil {
			continue
		}
		if result.ValidationPassed {
			validationPassedCount++
		}
		totalOriginal += result.InputSize
		totalEncoded += result.OutputSize
		totalDuration += result.Duration
		totalVideoSeconds += float64(result.AverageSpeed) * result.Duration.Seconds()
		fileResults = append(fileResults, reporter.FileResult{
			Filename:  util.GetFilename(inputPath),
			Reduction: util.CalculateSizeReduction(result.InputSize, result.OutputSize),
		})
	}

	var avgSpeed float32
	if totalDuration.Seconds() > 0 {
		avgSpeed = float32(totalVideoSeconds / totalDuration.Seconds())
	}
	rep.BatchComplete(reporter.BatchSummary{
		SuccessfulCount:       successCount,
		TotalFiles:            len(files.Files),
		TotalOriginalSize:     totalOriginal,
		TotalEncodedSize:      totalEncoded,
		TotalDuration:         totalDuration,
		AverageSpeed:          avgSpeed,
		FileResults:           fileResults,
		ValidationPassedCount: validationPassedCount,
		ValidationFailedCount: successCount - validationPassedCount,
	})

	if successCount == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
