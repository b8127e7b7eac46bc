package config

import (
	"errors"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.ChunkMethod != DefaultChunkMethod {
		t.Errorf("expected ChunkMethod=%v, got %v", DefaultChunkMethod, cfg.ChunkMethod)
	}
	if cfg.SceneMethod != DefaultSceneMethod {
		t.Errorf("expected SceneMethod=%v, got %v", DefaultSceneMethod, cfg.SceneMethod)
	}
	if cfg.Muxer != DefaultMuxer {
		t.Errorf("expected Muxer=%v, got %v", DefaultMuxer, cfg.Muxer)
	}
	if cfg.TargetQualityEnabled() {
		t.Error("expected TargetQualityEnabled() to be false by default")
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg := NewConfig()
		cfg.InputPath = "in.mkv"
		cfg.OutputPath = "out.mkv"
		cfg.Encoder = EncoderSVT
		return cfg
	}

	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantSentinel error
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:         "missing input",
			modify:       func(c *Config) { c.InputPath = "" },
			wantErr:      true,
			wantSentinel: ErrMissingInput,
		},
		{
			name:         "missing output without sc-only",
			modify:       func(c *Config) { c.OutputPath = "" },
			wantErr:      true,
			wantSentinel: ErrMissingOutput,
		},
		{
			name: "missing output is fine with sc-only",
			modify: func(c *Config) {
				c.OutputPath = ""
				c.SceneOnly = true
			},
			wantErr: false,
		},
		{
			name:         "unknown encoder",
			modify:       func(c *Config) { c.Encoder = "nvenc" },
			wantErr:      true,
			wantSentinel: ErrInvalidEncoder,
		},
		{
			name:         "unknown chunk method",
			modify:       func(c *Config) { c.ChunkMethod = "bogus" },
			wantErr:      true,
			wantSentinel: ErrInvalidChunkMethod,
		},
		{
			name:         "unknown scene method",
			modify:       func(c *Config) { c.SceneMethod = "bogus" },
			wantErr:      true,
			wantSentinel: ErrInvalidSceneMethod,
		},
		{
			name:         "unknown muxer",
			modify:       func(c *Config) { c.Muxer = "bogus" },
			wantErr:      true,
			wantSentinel: ErrInvalidMuxer,
		},
		{
			name:         "target-quality above 100",
			modify:       func(c *Config) { c.TargetQuality = 101 },
			wantErr:      true,
			wantSentinel: ErrInvalidTargetQuality,
		},
		{
			name:         "negative extra-split",
			modify:       func(c *Config) { c.ExtraSplit = -1 },
			wantErr:      true,
			wantSentinel: ErrInvalidExtraSplit,
		},
		{
			name:         "negative workers",
			modify:       func(c *Config) { c.Workers = -1 },
			wantErr:      true,
			wantSentinel: ErrInvalidWorkers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want sentinel %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestTargetQualityEnabled(t *testing.T) {
	cfg := NewConfig()
	if cfg.TargetQualityEnabled() {
		t.Error("expected disabled when TargetQuality is 0")
	}
	cfg.TargetQuality = 95
	if !cfg.TargetQualityEnabled() {
		t.Error("expected enabled when TargetQuality > 0")
	}
}

func TestScratchDirDefaultsNextToOutput(t *testing.T) {
	cfg := NewConfig()
	cfg.InputPath = "/videos/in.mkv"
	cfg.OutputPath = "/videos/out/final.mkv"

	got := cfg.ScratchDir()
	want := "/videos/out/.av1an"
	if got != want {
		t.Errorf("ScratchDir() = %q, want %q", got, want)
	}

	if cfg.SplitDir() != want+"/split" {
		t.Errorf("SplitDir() = %q", cfg.SplitDir())
	}
	if cfg.DoneFilePath() != want+"/done.json" {
		t.Errorf("DoneFilePath() = %q", cfg.DoneFilePath())
	}
}

func TestScratchDirExplicitTemp(t *testing.T) {
	cfg := NewConfig()
	cfg.InputPath = "/videos/in.mkv"
	cfg.OutputPath = "/videos/out/final.mkv"
	cfg.TempDir = "/scratch/job1"

	if cfg.ScratchDir() != "/scratch/job1" {
		t.Errorf("ScratchDir() = %q, want explicit temp dir", cfg.ScratchDir())
	}
}

func TestScenesCachePath(t *testing.T) {
	cfg := NewConfig()
	cfg.InputPath = "/videos/in.mkv"
	cfg.OutputPath = "/videos/out/final.mkv"

	if cfg.ScenesCachePath() != cfg.ScratchDir()+"/scenes.json" {
		t.Errorf("ScenesCachePath() = %q", cfg.ScenesCachePath())
	}

	cfg.ScenesPath = "/given/scenes.json"
	if cfg.ScenesCachePath() != "/given/scenes.json" {
		t.Errorf("ScenesCachePath() = %q, want explicit path", cfg.ScenesCachePath())
	}
}
