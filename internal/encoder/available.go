package encoder

import (
	"fmt"
	"os/exec"

	"github.com/five82/av1an/internal/config"
)

// IsAvailable checks if a variant's encoder binary is available in PATH.
func IsAvailable(v Variant) bool {
	b, err := NewBuilder(v)
	if err != nil {
		return false
	}
	_, err = exec.LookPath(b.BinaryName())
	return err == nil
}

// GetPath returns the resolved PATH location of a variant's encoder binary.
func GetPath(v Variant) (string, error) {
	b, err := NewBuilder(v)
	if err != nil {
		return "", err
	}
	return exec.LookPath(b.BinaryName())
}

// CheckExternalTools verifies that every external binary a job run with
// this variant and muxer will need to invoke is reachable on PATH:
// the chosen encoder, ffmpeg (always, for probing/chunk extraction/VMAF),
// and mkvmerge when the muxer or the variant's required container demands
// it.
func CheckExternalTools(v Variant, muxer config.Muxer) error {
	if !IsAvailable(v) {
		b, _ := NewBuilder(v)
		name := "encoder"
		if b != nil {
			name = b.BinaryName()
		}
		return fmt.Errorf("encoder binary %q not found on PATH", name)
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found on PATH: %w", err)
	}
	effectiveMuxer := muxer
	if req := v.RequiredMuxer(); req != "" {
		effectiveMuxer = req
	}
	if effectiveMuxer == config.MuxerMkvmerge {
		if _, err := exec.LookPath("mkvmerge"); err != nil {
			return fmt.Errorf("mkvmerge not found on PATH: %w", err)
		}
	}
	return nil
}
