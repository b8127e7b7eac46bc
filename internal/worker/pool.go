package worker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/five82/av1an/internal/chunk"
	"github.com/five82/av1an/internal/encoder"
	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/logging"
	"github.com/five82/av1an/internal/metric"
	"github.com/five82/av1an/internal/resume"
	"github.com/five82/av1an/internal/source"
	"github.com/five82/av1an/internal/tq"
	"github.com/five82/av1an/internal/util"
	"github.com/five82/av1an/internal/videoinfo"
)

// Config describes one job's worker pool run: the encoder backend and
// chunk source to use, the job's parallelism and retry policy, and the
// target-quality controller settings when enabled.
type Config struct {
	Variant     encoder.Variant
	Builder     encoder.Builder
	Provider    source.Provider
	Info        *videoinfo.VideoInfo
	ExtraArgs   []string // user's raw -v args, quantizer flag already stripped if TQ is enabled
	Quantizer   int      // flat quantizer, used when TQ is nil
	Passes      int
	Workers     int // requested parallelism; 0 means one worker per pending chunk
	MemFraction float64
	Threads     int // logical processors per concurrent encoder; 0 means calculate from CPU topology
	Retries     int

	TQ             *tq.Config // nil disables the target-quality controller
	Scorer         metric.Scorer
	ProbeFailLimit int

	Resume     *resume.Store
	Logger     *logging.Logger
	ScratchDir string // holds per-chunk temporary y4m and probe files

	OnProgress      func(Progress)
	OnTQResult      func(tq.ChunkResult) // called once per chunk when TQ is enabled, for debug reporting
	OnChunkComplete func(EncodeResult)   // called once per chunk, success or failure
}

// Run drains chunks through a bounded pool of workers, each extracting its
// frame range via Config.Provider, optionally running the target-quality
// controller to pick a quantizer, encoding via Config.Builder, and
// recording completion in Config.Resume. Chunks already marked done in
// Config.Resume are skipped. Run returns the first worker error it
// observes, after cancelling the remaining work.
func Run(ctx context.Context, sourcePath string, chunks []chunk.Chunk, set *chunk.Set, cfg Config) error {
	pending := make([]chunk.Chunk, 0, len(chunks))
	totalFrames := 0
	doneFrames := 0
	for _, c := range chunks {
		totalFrames += c.Frames()
		if cfg.Resume.IsDone(c.Idx) {
			set.SetStatus(c.Idx, chunk.StatusDone)
			doneFrames += c.Frames()
			continue
		}
		pending = append(pending, c)
	}
	if len(pending) == 0 {
		return nil
	}

	if err := os.MkdirAll(cfg.ScratchDir, 0755); err != nil {
		return errors.NewIOError("failed to create worker scratch directory", err)
	}

	avgFrames := totalFrames / max(len(chunks), 1)
	workers := cfg.Workers
	if workers <= 0 {
		workers = len(pending)
	}
	permits := calculatePermits(workers, cfg.Info.CroppedWidth(), cfg.Info.CroppedHeight(), avgFrames, cfg.MemFraction)
	if permits > len(pending) {
		permits = len(pending)
	}
	if cfg.Threads <= 0 {
		cfg.Threads = threadsPerWorker(permits, cfg.Info.CroppedWidth())
	}

	dispatcher := chunk.NewDispatcher(pending)
	tracker := tq.NewTracker()

	var (
		mu       sync.Mutex
		progress = Progress{ChunksComplete: len(chunks) - len(pending), ChunksTotal: len(chunks), FramesComplete: doneFrames, FramesTotal: totalFrames}
		firstErr error
		errOnce  sync.Once
	)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reportErr := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	var wg sync.WaitGroup
	for w := 0; w < permits; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			_ = pinToCPU(workerID)
			for {
				ch, ok := dispatcher.Next()
				if !ok {
					return
				}
				select {
				case <-runCtx.Done():
					return
				default:
				}

				quantizer, err := processWithRetry(runCtx, sourcePath, ch, cfg, tracker)
				if err != nil {
					if cfg.OnChunkComplete != nil {
						cfg.OnChunkComplete(EncodeResult{ChunkIdx: ch.Idx, Frames: ch.Frames(), Error: err})
					}
					reportErr(err)
					return
				}

				set.SetQuantizer(ch.Idx, quantizer)
				set.SetStatus(ch.Idx, chunk.StatusDone)
				dispatcher.MarkComplete(ch.Idx)
				if err := cfg.Resume.MarkDone(ch.Idx, ch.SegmentPath, quantizer); err != nil {
					reportErr(err)
					return
				}

				var segSize uint64
				if fi, err := os.Stat(ch.SegmentPath); err == nil {
					segSize = uint64(fi.Size())
				}
				if cfg.OnChunkComplete != nil {
					cfg.OnChunkComplete(EncodeResult{ChunkIdx: ch.Idx, Frames: ch.Frames(), Size: segSize})
				}

				mu.Lock()
				progress.ChunksComplete++
				progress.FramesComplete += ch.Frames()
				progress.BytesComplete += segSize
				snapshot := progress
				mu.Unlock()
				if cfg.OnProgress != nil {
					cfg.OnProgress(snapshot)
				}
			}
		}(w)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return errors.NewInterruptedError()
	}
	return nil
}

// processWithRetry runs one chunk through extraction, optional
// target-quality search, and encode, retrying up to cfg.Retries times on
// failure before giving up. Retries are immediate: a transient encoder
// crash is far more likely to be fixed by trying again than by waiting.
func processWithRetry(ctx context.Context, sourcePath string, ch chunk.Chunk, cfg Config, tracker *tq.CRFTracker) (int, error) {
	var lastErr error
	attempts := max(cfg.Retries, 0) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		quantizer, err := processChunk(ctx, sourcePath, ch, cfg, tracker)
		if err == nil {
			return quantizer, nil
		}
		lastErr = err
		if cfg.Logger != nil {
			cfg.Logger.Warn("chunk %d attempt %d/%d failed: %v", ch.Idx, attempt+1, attempts, err)
		}
	}
	return 0, lastErr
}

func processChunk(ctx context.Context, sourcePath string, ch chunk.Chunk, cfg Config, tracker *tq.CRFTracker) (int, error) {
	rawPath := filepath.Join(cfg.ScratchDir, fmt.Sprintf("%d.y4m", ch.Idx))
	if err := extractChunk(ctx, sourcePath, ch, cfg, rawPath); err != nil {
		return 0, err
	}
	defer os.Remove(rawPath)

	quantizer := cfg.Quantizer
	if cfg.TQ != nil {
		crf, err := searchQuantizer(ctx, ch, rawPath, cfg, tracker)
		if err != nil {
			return 0, err
		}
		quantizer = crf
	}

	if err := encodeChunk(ctx, cfg, ch.SegmentPath, rawPath, Params{Chunk: ch, Quantizer: quantizer, Pass: 0, StatsFile: ""}); err != nil {
		return 0, err
	}
	return quantizer, nil
}

// extractChunk streams the chunk's frame range to a temporary y4m file, so
// it can be read multiple times: once per target-quality probe, plus the
// final encode, without re-decoding the source each time.
func extractChunk(ctx context.Context, sourcePath string, ch chunk.Chunk, cfg Config, rawPath string) error {
	f, err := os.Create(rawPath)
	if err != nil {
		return errors.NewIOError("failed to create chunk scratch file", err)
	}
	defer f.Close()

	if err := cfg.Provider.Stream(ctx, sourcePath, ch.Start, ch.End, cfg.Info, f); err != nil {
		return err
	}
	return nil
}

// Params bundles the per-attempt values needed to build and run one
// encoder invocation for a chunk.
type Params struct {
	Chunk     chunk.Chunk
	Quantizer int
	Pass      int
	StatsFile string
}

func buildParams(cfg Config, p Params, outputPath string) encoder.Params {
	return encoder.Params{
		Info:       cfg.Info,
		Width:      cfg.Info.CroppedWidth(),
		Height:     cfg.Info.CroppedHeight(),
		Frames:     p.Chunk.Frames(),
		Quantizer:  p.Quantizer,
		Threads:    cfg.Threads,
		ExtraArgs:  cfg.ExtraArgs,
		OutputPath: outputPath,
		Pass:       p.Pass,
		StatsFile:  p.StatsFile,
	}
}

// threadsPerWorker picks how many logical processors each concurrently
// running encoder may use, given permits concurrent workers sharing the
// host's physical cores and the chunk width (wider frames parallelize
// better in SVT-AV1, so they get a higher cap). Hyperthreaded cores earn a
// small bonus since SMT adds throughput without a full extra physical core.
func threadsPerWorker(permits, width int) int {
	if permits <= 0 {
		return 1
	}

	physical := util.PhysicalCores()
	logical := util.LogicalCores()
	hasSMT := logical > physical

	var maxThreads int
	switch {
	case width >= 3840:
		maxThreads = 16
	case width >= 1920:
		maxThreads = 10
	default:
		maxThreads = 6
	}

	threads := physical / permits
	if hasSMT && threads < maxThreads {
		threads++
	}
	return max(1, min(threads, maxThreads))
}

// encodeChunk runs the configured encoder once (or twice, for variants
// that support and were asked to run two-pass) against rawPath's y4m
// contents, writing outputPath.
func encodeChunk(ctx context.Context, cfg Config, outputPath, rawPath string, p Params) error {
	if cfg.Passes == 2 && cfg.Variant.SupportsTwoPass() {
		statsFile := outputPath + ".stats"
		defer os.Remove(statsFile)
		if err := runEncodePass(ctx, cfg, rawPath, buildParams(cfg, Params{Chunk: p.Chunk, Quantizer: p.Quantizer, Pass: 1, StatsFile: statsFile}, os.DevNull)); err != nil {
			return err
		}
		return runEncodePass(ctx, cfg, rawPath, buildParams(cfg, Params{Chunk: p.Chunk, Quantizer: p.Quantizer, Pass: 2, StatsFile: statsFile}, outputPath))
	}
	return runEncodePass(ctx, cfg, rawPath, buildParams(cfg, p, outputPath))
}

func runEncodePass(ctx context.Context, cfg Config, rawPath string, p encoder.Params) error {
	in, err := os.Open(rawPath)
	if err != nil {
		return errors.NewIOError("failed to open chunk scratch file", err)
	}
	defer in.Close()

	args := cfg.Builder.BuildArgv(p)
	cmd := exec.CommandContext(ctx, cfg.Builder.BinaryName(), args...)
	cmd.Stdin = in
	var stderr errCapture
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		return errors.NewCommandFailedError(cfg.Builder.BinaryName(), exitCode, stderr.String())
	}
	return nil
}

// searchQuantizer runs the target-quality controller's probe loop for one
// chunk: repeatedly encodes a low-cost probe at a candidate quantizer,
// scores it against the chunk's own y4m as reference, and narrows the
// search until Config.TQ's convergence or round limit is reached.
func searchQuantizer(ctx context.Context, ch chunk.Chunk, rawPath string, cfg Config, tracker *tq.CRFTracker) (int, error) {
	qpMin, qpMax := cfg.TQ.QPMin, cfg.TQ.QPMax
	predicted := tracker.Predict(ch.Idx, (qpMin+qpMax)/2)
	state := tq.NewState(cfg.TQ.Target, qpMin, qpMax, predicted)

	failLimit := cfg.ProbeFailLimit
	if failLimit <= 0 {
		failLimit = 2
	}
	consecutiveFailures := 0

	round := 0
	for ; round < cfg.TQ.MaxRounds; round++ {
		crf := tq.NextCRF(state)
		probePath := filepath.Join(cfg.ScratchDir, fmt.Sprintf("%d-probe-%s.%s", ch.Idx, strconv.FormatFloat(crf, 'f', -1, 64), cfg.Variant.SegmentExt()))

		err := runEncodePass(ctx, cfg, rawPath, buildParams(cfg, Params{Chunk: ch, Quantizer: int(crf)}, probePath))
		if err != nil {
			os.Remove(probePath)
			consecutiveFailures++
			if consecutiveFailures >= failLimit {
				return 0, errors.NewProbeFailure(fmt.Sprintf("chunk %d: %d consecutive probe failures", ch.Idx, consecutiveFailures), err)
			}
			continue
		}
		consecutiveFailures = 0

		score, frameScores, err := cfg.Scorer.Score(ctx, rawPath, probePath, cfg.Info.FPS())
		size := fileSize(probePath)
		os.Remove(probePath)
		if err != nil {
			return 0, err
		}

		state.AddProbe(crf, score, frameScores, size)
		if cfg.Logger != nil {
			cfg.Logger.Debug("chunk %d probe round %d: crf=%.1f score=%.2f", ch.Idx, round+1, crf, score)
		}
		if tq.ShouldComplete(state, score, cfg.TQ) {
			break
		}
	}

	best := state.BestProbe()
	if best == nil {
		return int((qpMin + qpMax) / 2), nil
	}
	tracker.Record(ch.Idx, best.CRF)

	if cfg.OnTQResult != nil {
		probes := make([]tq.ProbeEntry, len(state.Probes))
		for i, p := range state.Probes {
			probes[i] = tq.ProbeEntry{CRF: p.CRF, Score: p.Score, Size: p.Size}
		}
		cfg.OnTQResult(tq.ChunkResult{
			ChunkIdx:     ch.Idx,
			Round:        round,
			FinalCRF:     best.CRF,
			FinalScore:   best.Score,
			Frames:       ch.Frames(),
			PredictedCRF: predicted,
			Probes:       probes,
		})
	}

	return int(best.CRF), nil
}

func fileSize(path string) uint64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return uint64(fi.Size())
}

// errCapture bounds the amount of an encoder child's stderr held in
// memory, so a chatty or stuck encoder can't grow a failure message
// without limit.
type errCapture struct {
	buf []byte
}

const maxErrCaptureBytes = 8192

func (e *errCapture) Write(p []byte) (int, error) {
	if len(e.buf) < maxErrCaptureBytes {
		room := maxErrCaptureBytes - len(e.buf)
		if room > len(p) {
			room = len(p)
		}
		e.buf = append(e.buf, p[:room]...)
	}
	return len(p), nil
}

func (e *errCapture) String() string {
	return string(e.buf)
}
