package keyframe

import "testing"

func TestChunkDurationForResolution(t *testing.T) {
	tests := []struct {
		name     string
		width    uint32
		height   uint32
		expected float64
	}{
		{name: "4K by width", width: 3840, height: 2160, expected: 45.0},
		{name: "4K by height only", width: 1920, height: 1600, expected: 45.0},
		{name: "1080p", width: 1920, height: 1080, expected: 30.0},
		{name: "1080p by height only", width: 1280, height: 1080, expected: 30.0},
		{name: "720p", width: 1280, height: 720, expected: 20.0},
		{name: "SD", width: 720, height: 480, expected: 20.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkDurationForResolution(tt.width, tt.height); got != tt.expected {
				t.Errorf("ChunkDurationForResolution(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.expected)
			}
		})
	}
}

func TestGenerateFixedChunks(t *testing.T) {
	tests := []struct {
		name              string
		totalFrames       int
		fpsNum, fpsDen    uint32
		chunkDurationSecs float64
		expected          []int
	}{
		{
			name: "zero fps denominator returns single chunk",
			totalFrames: 1000, fpsNum: 24, fpsDen: 0, chunkDurationSecs: 30,
			expected: []int{0},
		},
		{
			name: "zero total frames returns single chunk",
			totalFrames: 0, fpsNum: 24, fpsDen: 1, chunkDurationSecs: 30,
			expected: []int{0},
		},
		{
			name: "24fps 30s chunks over 2000 frames",
			totalFrames: 2000, fpsNum: 24, fpsDen: 1, chunkDurationSecs: 30,
			expected: []int{0, 720, 1440},
		},
		{
			name: "shorter than one chunk still yields frame 0",
			totalFrames: 100, fpsNum: 24, fpsDen: 1, chunkDurationSecs: 30,
			expected: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateFixedChunks(tt.totalFrames, tt.fpsNum, tt.fpsDen, tt.chunkDurationSecs)
			if !intSliceEqual(got, tt.expected) {
				t.Errorf("GenerateFixedChunks(%d, %d, %d, %v) = %v, want %v",
					tt.totalFrames, tt.fpsNum, tt.fpsDen, tt.chunkDurationSecs, got, tt.expected)
			}
		})
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
