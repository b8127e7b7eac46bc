package probe

import (
	"testing"

	"github.com/five82/av1an/internal/ffprobe"
)

func TestFrameRateSnapsToCommonRates(t *testing.T) {
	tests := []struct {
		name        string
		frames      uint64
		duration    float64
		wantNum     int
		wantDen     int
	}{
		{"23.976fps", 2398, 100.0, 24000, 1001},
		{"29.97fps", 2997, 100.0, 30000, 1001},
		{"59.94fps", 5994, 100.0, 60000, 1001},
		{"25fps exact", 2500, 100.0, 25000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := &ffprobe.MediaInfo{TotalFrames: tt.frames}
			num, den, err := frameRate("test.mkv", media, tt.duration)
			if err != nil {
				t.Fatalf("frameRate() error = %v", err)
			}
			if num != tt.wantNum || den != tt.wantDen {
				t.Errorf("frameRate() = %d/%d, want %d/%d", num, den, tt.wantNum, tt.wantDen)
			}
		})
	}
}

func TestFrameRateRejectsZeroDuration(t *testing.T) {
	media := &ffprobe.MediaInfo{TotalFrames: 100}
	if _, _, err := frameRate("test.mkv", media, 0); err == nil {
		t.Error("frameRate() expected error for zero duration")
	}
}
