// Package scene implements the Scene Splitter: it partitions [0,
// total_frames) into an ordered, non-overlapping list of Scenes, either by
// running an external scene-change detector ("standard") or by cutting at
// a fixed, resolution-dependent interval ("fast"), then applies an
// optional --extra-split pass to cap scene length.
package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/five82/av1an/internal/errors"
	"github.com/five82/av1an/internal/keyframe"
	"github.com/five82/av1an/internal/scd"
	"github.com/five82/av1an/internal/videoinfo"
)

// Scene is a contiguous, non-overlapping frame range.
type Scene struct {
	StartFrame int `json:"start_frame"`
	EndFrame   int `json:"end_frame"`
}

// Frames returns the number of frames this scene spans.
func (s Scene) Frames() int {
	return s.EndFrame - s.StartFrame
}

// scenesFile is the on-disk schema for -s/--sc-only.
type scenesFile struct {
	Scenes []Scene `json:"scenes"`
	Frames int     `json:"frames"`
}

// Method selects how scene boundaries are produced.
type Method string

const (
	MethodFast     Method = "fast"
	MethodStandard Method = "standard"
)

// Split produces the scene list for a source, using a cached scenes file
// at cachePath if one already exists, detecting cuts otherwise, and
// writing the result back to cachePath for reuse. sourcePath is only
// used by the "standard" method, which shells out to an external
// detector that reads the file directly.
func Split(sourcePath string, info *videoinfo.VideoInfo, method Method, cachePath string, extraSplit int, showProgress bool) ([]Scene, error) {
	if cachePath != "" {
		if scenes, err := Load(cachePath, info.TotalFrames); err == nil {
			return applyExtraSplit(scenes, extraSplit), nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	var scenes []Scene
	var err error
	switch method {
	case MethodFast:
		scenes, err = detectFast(info)
	case MethodStandard:
		scenes, err = detectStandard(sourcePath, info, showProgress)
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown scene-cut method %q", method))
	}
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := Save(cachePath, scenes, info.TotalFrames); err != nil {
			return nil, err
		}
	}

	return applyExtraSplit(scenes, extraSplit), nil
}

// detectFast cuts at a fixed interval sized by resolution, via the
// fixed-duration chunker.
func detectFast(info *videoinfo.VideoInfo) ([]Scene, error) {
	duration := keyframe.ChunkDurationForResolution(uint32(info.Width), uint32(info.Height))
	boundaries := keyframe.GenerateFixedChunks(info.TotalFrames, uint32(info.FPSNum), uint32(info.FPSDen), duration)
	return boundariesToScenes(boundaries, info.TotalFrames), nil
}

// detectStandard shells out to the external scene-change-detection binary.
func detectStandard(sourcePath string, info *videoinfo.VideoInfo, showProgress bool) ([]Scene, error) {
	tmp, err := os.CreateTemp("", "av1an-scenes-*.txt")
	if err != nil {
		return nil, errors.NewIOError("failed to create temporary scene file", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := scd.DetectScenes(sourcePath, tmpPath, uint32(info.FPSNum), uint32(info.FPSDen), info.TotalFrames, showProgress); err != nil {
		return nil, errors.NewProbeError(fmt.Sprintf("scene detection failed: %v", err))
	}

	boundaries, err := readBoundaries(tmpPath)
	if err != nil {
		return nil, err
	}
	return boundariesToScenes(boundaries, info.TotalFrames), nil
}

func readBoundaries(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("failed to read scene boundaries", err)
	}
	var boundaries []int
	var cur int
	have := false
	for _, b := range data {
		switch {
		case b >= '0' && b <= '9':
			cur = cur*10 + int(b-'0')
			have = true
		case b == '\n' || b == '\r':
			if have {
				boundaries = append(boundaries, cur)
			}
			cur, have = 0, false
		}
	}
	if have {
		boundaries = append(boundaries, cur)
	}
	return boundaries, nil
}

// boundariesToScenes converts a sorted list of interior cut points into a
// partition of [0, totalFrames).
func boundariesToScenes(boundaries []int, totalFrames int) []Scene {
	cuts := make([]int, 0, len(boundaries)+2)
	cuts = append(cuts, 0)
	for _, b := range boundaries {
		if b > 0 && b < totalFrames {
			cuts = append(cuts, b)
		}
	}
	cuts = append(cuts, totalFrames)

	scenes := make([]Scene, 0, len(cuts)-1)
	for i := 0; i < len(cuts)-1; i++ {
		if cuts[i+1] > cuts[i] {
			scenes = append(scenes, Scene{StartFrame: cuts[i], EndFrame: cuts[i+1]})
		}
	}
	return scenes
}

// applyExtraSplit further divides any scene longer than maxFrames into
// equal-ish sub-scenes, each no longer than maxFrames. maxFrames <= 0
// disables the pass.
func applyExtraSplit(scenes []Scene, maxFrames int) []Scene {
	if maxFrames <= 0 {
		return scenes
	}
	out := make([]Scene, 0, len(scenes))
	for _, sc := range scenes {
		frames := sc.Frames()
		if frames <= maxFrames {
			out = append(out, sc)
			continue
		}
		parts := (frames + maxFrames - 1) / maxFrames
		base := frames / parts
		remainder := frames % parts
		start := sc.StartFrame
		for i := 0; i < parts; i++ {
			length := base
			if i < remainder {
				length++
			}
			out = append(out, Scene{StartFrame: start, EndFrame: start + length})
			start += length
		}
	}
	return out
}

// Load reads a scenes JSON file, verifying its frame count against the
// probed source. A mismatch is a fatal PlanError per spec.
func Load(path string, totalFrames int) ([]Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf scenesFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, errors.NewJSONParseError(fmt.Sprintf("failed to parse scenes file %s", path), err)
	}
	if sf.Frames != totalFrames {
		return nil, errors.NewPlanError(fmt.Sprintf("scenes file %s reports %d frames, source has %d", path, sf.Frames, totalFrames))
	}
	return sf.Scenes, nil
}

// Save atomically writes scenes to path in the spec's JSON schema,
// writing to a temp file and renaming to avoid a partial file on crash.
func Save(path string, scenes []Scene, totalFrames int) error {
	data, err := json.MarshalIndent(scenesFile{Scenes: scenes, Frames: totalFrames}, "", "  ")
	if err != nil {
		return errors.NewJSONParseError("failed to marshal scenes file", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to write %s", tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to rename %s to %s", tmp, path), err)
	}
	return nil
}
