package tq

import (
	"fmt"
	"math"
	"sort"
)

// ChunkResult summarizes one chunk's completed target-quality search, for
// end-of-run debug reporting.
type ChunkResult struct {
	ChunkIdx     int
	Round        int
	FinalCRF     float64
	FinalScore   float64
	Frames       int
	PredictedCRF float64
	Probes       []ProbeEntry
	Error        error
}

// Stats aggregates per-chunk ChunkResults into run-wide debug statistics.
type Stats struct {
	AvgRounds float64
	MinRounds int
	MaxRounds int

	AvgPredictionDelta float64
	MaxPredictionDelta float64
	PredictedChunks    int

	MinFrames int
	MaxFrames int
	MinDur    float64
	MaxDur    float64
	NumChunks int

	CRFMin    float64
	CRFMax    float64
	CRFMean   float64
	CRFStdDev float64

	RoundsBreakdown map[int]int

	FailedChunks []ChunkResult
}

// ComputeStats computes aggregated statistics from a run's ChunkResults.
// maxRounds identifies chunks that exhausted the search without converging.
func ComputeStats(results []ChunkResult, fps float64, maxRounds int) *Stats {
	if len(results) == 0 {
		return nil
	}

	stats := &Stats{
		RoundsBreakdown: make(map[int]int),
		MinRounds:       math.MaxInt,
		MinFrames:       math.MaxInt,
		MinDur:          math.MaxFloat64,
	}

	var totalRounds int
	var crfSum, totalPredDelta float64
	var crfValues []float64
	var validCount int

	for _, r := range results {
		if r.Error != nil {
			continue
		}
		validCount++

		totalRounds += r.Round
		stats.MinRounds = min(stats.MinRounds, r.Round)
		stats.MaxRounds = max(stats.MaxRounds, r.Round)

		roundKey := min(r.Round, 4)
		stats.RoundsBreakdown[roundKey]++

		crfValues = append(crfValues, r.FinalCRF)
		crfSum += r.FinalCRF

		stats.MinFrames = min(stats.MinFrames, r.Frames)
		stats.MaxFrames = max(stats.MaxFrames, r.Frames)
		if fps > 0 {
			dur := float64(r.Frames) / fps
			stats.MinDur = min(stats.MinDur, dur)
			stats.MaxDur = max(stats.MaxDur, dur)
		}

		if r.PredictedCRF > 0 {
			delta := math.Abs(r.PredictedCRF - r.FinalCRF)
			totalPredDelta += delta
			stats.MaxPredictionDelta = max(stats.MaxPredictionDelta, delta)
			stats.PredictedChunks++
		}

		if r.Round >= maxRounds {
			stats.FailedChunks = append(stats.FailedChunks, r)
		}
	}

	stats.NumChunks = validCount

	if validCount > 0 {
		stats.AvgRounds = float64(totalRounds) / float64(validCount)
	}
	if stats.PredictedChunks > 0 {
		stats.AvgPredictionDelta = totalPredDelta / float64(stats.PredictedChunks)
	}

	if len(crfValues) > 0 {
		stats.CRFMin = crfValues[0]
		stats.CRFMax = crfValues[0]
		for _, crf := range crfValues {
			stats.CRFMin = min(stats.CRFMin, crf)
			stats.CRFMax = max(stats.CRFMax, crf)
		}
		stats.CRFMean = crfSum / float64(len(crfValues))

		var variance float64
		for _, crf := range crfValues {
			diff := crf - stats.CRFMean
			variance += diff * diff
		}
		stats.CRFStdDev = math.Sqrt(variance / float64(len(crfValues)))
	}

	if stats.MinRounds == math.MaxInt {
		stats.MinRounds = 0
	}
	if stats.MinFrames == math.MaxInt {
		stats.MinFrames = 0
	}
	if stats.MinDur == math.MaxFloat64 {
		stats.MinDur = 0
	}

	return stats
}

// ScoreDistribution buckets each chunk's final score into 1-point-wide bins
// within [targetMin, targetMax], plus "below"/"above" overflow buckets.
func ScoreDistribution(results []ChunkResult, targetMin, targetMax float64) map[string]int {
	buckets := make(map[string]int)

	bucketStart := math.Floor(targetMin)
	bucketEnd := math.Ceil(targetMax)
	for score := bucketStart; score < bucketEnd; score++ {
		buckets[fmt.Sprintf("%.0f-%.0f", score, score+1)] = 0
	}
	buckets["below"] = 0
	buckets["above"] = 0

	for _, r := range results {
		if r.Error != nil {
			continue
		}
		switch {
		case r.FinalScore < targetMin:
			buckets["below"]++
		case r.FinalScore > targetMax:
			buckets["above"]++
		default:
			bucketScore := math.Floor(r.FinalScore)
			buckets[fmt.Sprintf("%.0f-%.0f", bucketScore, bucketScore+1)]++
		}
	}

	return buckets
}

// Reporter is the subset of reporter.Reporter that Summarize needs, kept
// narrow so this package doesn't import internal/reporter.
type Reporter interface {
	Verbose(message string)
}

// Summarize writes a human-readable breakdown of a run's target-quality
// search behavior to rep, for --verbose debugging of convergence quality.
func Summarize(stats *Stats, rep Reporter, targetMin, targetMax float64, results []ChunkResult, fps float64) {
	if stats == nil {
		return
	}

	rep.Verbose("")
	rep.Verbose("=== Target-Quality Debug Statistics ===")
	rep.Verbose(fmt.Sprintf("Iterations: avg=%.1f, min=%d, max=%d", stats.AvgRounds, stats.MinRounds, stats.MaxRounds))

	summarizeDistribution(rep, results, targetMin, targetMax)

	if stats.PredictedChunks > 0 {
		rep.Verbose(fmt.Sprintf("Prediction accuracy: avg delta=%.1f CRF, max delta=%.1f CRF (%d chunks)",
			stats.AvgPredictionDelta, stats.MaxPredictionDelta, stats.PredictedChunks))
	}

	if stats.NumChunks > 0 {
		rep.Verbose(fmt.Sprintf("Chunk lengths: %d chunks, frames %d-%d, duration %.1fs-%.1fs",
			stats.NumChunks, stats.MinFrames, stats.MaxFrames, stats.MinDur, stats.MaxDur))
	}

	rep.Verbose(fmt.Sprintf("CRF distribution: min=%.0f, max=%.0f, mean=%.1f, stddev=%.1f",
		stats.CRFMin, stats.CRFMax, stats.CRFMean, stats.CRFStdDev))

	summarizeRoundsBreakdown(rep, stats.RoundsBreakdown)
	summarizeFailedChunks(rep, stats.FailedChunks)

	rep.Verbose("=== End Target-Quality Debug Statistics ===")
	rep.Verbose("")
}

func summarizeDistribution(rep Reporter, results []ChunkResult, targetMin, targetMax float64) {
	buckets := ScoreDistribution(results, targetMin, targetMax)
	rep.Verbose(fmt.Sprintf("Score distribution (target %.0f-%.0f):", targetMin, targetMax))

	var keys []string
	for k := range buckets {
		if k != "below" && k != "above" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if buckets["below"] > 0 {
		rep.Verbose(fmt.Sprintf("  <%.0f: %d chunks", targetMin, buckets["below"]))
	}
	for _, k := range keys {
		if buckets[k] > 0 {
			rep.Verbose(fmt.Sprintf("  %s: %d chunks", k, buckets[k]))
		}
	}
	if buckets["above"] > 0 {
		rep.Verbose(fmt.Sprintf("  >%.0f: %d chunks", targetMax, buckets["above"]))
	}
}

func summarizeRoundsBreakdown(rep Reporter, breakdown map[int]int) {
	rep.Verbose("Rounds breakdown:")
	for round := 1; round <= 4; round++ {
		count := breakdown[round]
		if count == 0 {
			continue
		}
		if round == 4 {
			rep.Verbose(fmt.Sprintf("  4+ rounds: %d chunks", count))
		} else {
			rep.Verbose(fmt.Sprintf("  %d round%s: %d chunks", round, pluralS(round), count))
		}
	}
}

func summarizeFailedChunks(rep Reporter, failed []ChunkResult) {
	if len(failed) == 0 {
		return
	}
	rep.Verbose(fmt.Sprintf("Failed convergence: %d chunks hit max rounds", len(failed)))
	for _, fc := range failed {
		rep.Verbose(fmt.Sprintf("  Chunk %d: final CRF=%.0f, score=%.1f", fc.ChunkIdx, fc.FinalCRF, fc.FinalScore))
		rep.Verbose("    Probe history:")
		for _, p := range fc.Probes {
			rep.Verbose(fmt.Sprintf("      CRF %.0f -> %.1f", p.CRF, p.Score))
		}
	}
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
