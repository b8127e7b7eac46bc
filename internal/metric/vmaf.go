package metric

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/five82/av1an/internal/errors"
)

// VMAFScorer scores probes by shelling out to ffmpeg's libvmaf filter. This
// is the default Scorer: every ffmpeg build the pipeline already depends on
// for muxing and piped-range extraction carries libvmaf, so no extra
// external tool is required.
type VMAFScorer struct{}

type vmafLog struct {
	Frames []struct {
		Metrics map[string]float64 `json:"metrics"`
	} `json:"frames"`
	PooledMetrics map[string]struct {
		Mean float64 `json:"mean"`
	} `json:"pooled_metrics"`
}

func (VMAFScorer) Score(ctx context.Context, referencePath, distortedPath string, frameRate float64) (float64, []float64, error) {
	logPath := filepath.Join(os.TempDir(), fmt.Sprintf("av1an-vmaf-%d.json", os.Getpid()))
	defer os.Remove(logPath)

	filter := fmt.Sprintf(
		"[0:v]setpts=PTS-STARTPTS[dist];[1:v]setpts=PTS-STARTPTS[ref];[dist][ref]libvmaf=log_path=%s:log_fmt=json",
		logPath,
	)

	args := []string{
		"-hide_banner", "-nostdin",
		"-i", distortedPath,
		"-i", referencePath,
		"-lavfi", filter,
		"-f", "null", "-",
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, nil, errors.NewFFmpegError(fmt.Sprintf("libvmaf scoring failed: %v\noutput: %s", err, truncate(out, 4096)))
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		return 0, nil, errors.NewIOError("failed to read libvmaf log", err)
	}

	return parseVMAFLog(data)
}

// parseVMAFLog extracts the pooled mean VMAF score and per-frame scores
// from a libvmaf JSON log.
func parseVMAFLog(data []byte) (float64, []float64, error) {
	var log vmafLog
	if err := json.Unmarshal(data, &log); err != nil {
		return 0, nil, errors.NewJSONParseError("failed to parse libvmaf log", err)
	}

	pooled, ok := log.PooledMetrics["vmaf"]
	if !ok {
		return 0, nil, errors.NewAnalysisError("libvmaf log carries no pooled vmaf score")
	}

	frameScores := make([]float64, 0, len(log.Frames))
	for _, f := range log.Frames {
		if v, ok := f.Metrics["vmaf"]; ok {
			frameScores = append(frameScores, v)
		}
	}

	return pooled.Mean, frameScores, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
