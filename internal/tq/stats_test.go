package tq

import "testing"

func TestComputeStats(t *testing.T) {
	results := []ChunkResult{
		{ChunkIdx: 0, Round: 1, FinalCRF: 24, FinalScore: 95.1, Frames: 240, PredictedCRF: 24},
		{ChunkIdx: 1, Round: 3, FinalCRF: 28, FinalScore: 94.8, Frames: 480, PredictedCRF: 30},
		{ChunkIdx: 2, Round: 2, FinalCRF: 26, FinalScore: 95.3, Frames: 120, Error: errChunk2},
	}

	stats := ComputeStats(results, 24.0, 3)

	if stats.NumChunks != 2 {
		t.Fatalf("NumChunks = %d, want 2 (errored chunk excluded)", stats.NumChunks)
	}
	if len(stats.FailedChunks) != 1 {
		t.Fatalf("FailedChunks = %d, want 1 (chunk at maxRounds)", len(stats.FailedChunks))
	}
	if stats.MinRounds != 1 || stats.MaxRounds != 3 {
		t.Errorf("rounds = [%d,%d], want [1,3]", stats.MinRounds, stats.MaxRounds)
	}
	if stats.CRFMin != 24 || stats.CRFMax != 28 {
		t.Errorf("CRF range = [%v,%v], want [24,28]", stats.CRFMin, stats.CRFMax)
	}
	if stats.PredictedChunks != 2 {
		t.Errorf("PredictedChunks = %d, want 2", stats.PredictedChunks)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	if stats := ComputeStats(nil, 24.0, 5); stats != nil {
		t.Errorf("ComputeStats(nil, ...) = %+v, want nil", stats)
	}
}

func TestScoreDistribution(t *testing.T) {
	results := []ChunkResult{
		{FinalScore: 93.0},
		{FinalScore: 95.0},
		{FinalScore: 97.0},
		{Error: errChunk2},
	}

	dist := ScoreDistribution(results, 94.0, 96.0)

	if dist["below"] != 1 {
		t.Errorf("below = %d, want 1", dist["below"])
	}
	if dist["95-96"] != 1 {
		t.Errorf("95-96 = %d, want 1", dist["95-96"])
	}
	if dist["above"] != 1 {
		t.Errorf("above = %d, want 1", dist["above"])
	}
}

var errChunk2 = errTest("probe limit exceeded")

type errTest string

func (e errTest) Error() string { return string(e) }
