package chunk

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/five82/av1an/internal/config"
	"github.com/five82/av1an/internal/errors"
)

const batchSize = 500

// writeConcatFile writes an ffmpeg concat-demuxer list file for the given
// segment paths, in order.
func writeConcatFile(concatPath string, paths []string) (err error) {
	f, createErr := os.Create(concatPath)
	if createErr != nil {
		return errors.NewIOError("failed to create concat list", createErr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.NewIOError("failed to close concat list", cerr)
		}
	}()

	for _, p := range paths {
		absPath, absErr := filepath.Abs(p)
		if absErr != nil {
			return errors.NewIOError(fmt.Sprintf("failed to resolve path %s", p), absErr)
		}
		if _, werr := fmt.Fprintf(f, "file '%s'\n", absPath); werr != nil {
			return errors.NewIOError("failed to write concat list", werr)
		}
	}
	return nil
}

// segmentPaths returns chunks' segment paths ordered by index.
func segmentPaths(chunks []Chunk) []string {
	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Idx < sorted[j].Idx })
	paths := make([]string, len(sorted))
	for i, c := range sorted {
		paths[i] = c.SegmentPath
	}
	return paths
}

// MergeFFmpeg concatenates chunks' segment files into a single video-only
// stream via ffmpeg's concat demuxer, batching into groups of 500 first
// when there are enough chunks that a single concat list is unreliable.
func MergeFFmpeg(chunks []Chunk, fpsNum, fpsDen int, outputPath, tmpDir string) error {
	if fpsDen == 0 {
		return errors.NewConfigError("invalid fps denominator: 0")
	}
	paths := segmentPaths(chunks)
	if len(paths) == 0 {
		return errors.NewEncodeError("no segment files to merge", nil)
	}

	if len(paths) > batchSize {
		batched, err := mergeBatched(paths, tmpDir)
		if err != nil {
			return err
		}
		paths = batched
	}

	concatPath := filepath.Join(tmpDir, "concat.txt")
	if err := writeConcatFile(concatPath, paths); err != nil {
		return err
	}
	defer os.Remove(concatPath)

	fps := float64(fpsNum) / float64(fpsDen)
	args := []string{
		"-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", concatPath,
		"-c", "copy",
		"-r", fmt.Sprintf("%.6f", fps),
		"-fflags", "+genpts+igndts+discardcorrupt+bitexact",
		"-avoid_negative_ts", "make_zero",
		"-reset_timestamps", "1",
		"-start_at_zero",
		"-y",
		outputPath,
	}
	cmd := exec.Command("ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.NewFFmpegError(fmt.Sprintf("ffmpeg concat failed: %v\noutput: %s", err, out))
	}
	return nil
}

// mergeBatched merges segments in fixed-size batches first, then merges
// the batch outputs, returning the (now few) paths left to concatenate.
func mergeBatched(paths []string, tmpDir string) ([]string, error) {
	batchDir := filepath.Join(tmpDir, "merge_batches")
	if err := os.MkdirAll(batchDir, 0755); err != nil {
		return nil, errors.NewIOError("failed to create batch merge directory", err)
	}
	defer os.RemoveAll(batchDir)

	var batchOutputs []string
	for start := 0; start < len(paths); start += batchSize {
		end := min(start+batchSize, len(paths))
		batchNum := start / batchSize

		concatPath := filepath.Join(batchDir, fmt.Sprintf("batch_%04d.txt", batchNum))
		if err := writeConcatFile(concatPath, paths[start:end]); err != nil {
			return nil, err
		}

		batchOut := filepath.Join(batchDir, fmt.Sprintf("batch_%04d.ts", batchNum))
		args := []string{"-hide_banner", "-f", "concat", "-safe", "0", "-i", concatPath, "-c", "copy", "-y", batchOut}
		cmd := exec.Command("ffmpeg", args...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return nil, errors.NewFFmpegError(fmt.Sprintf("batch %d merge failed: %v\noutput: %s", batchNum, err, out))
		}
		batchOutputs = append(batchOutputs, batchOut)
	}
	return batchOutputs, nil
}

// MergeMkvmerge concatenates bare elementary-stream segments (x265/x264)
// via mkvmerge's file-append syntax, which ffmpeg cannot do cleanly for
// those codecs.
func MergeMkvmerge(chunks []Chunk, outputPath string) error {
	paths := segmentPaths(chunks)
	if len(paths) == 0 {
		return errors.NewEncodeError("no segment files to merge", nil)
	}

	args := []string{"-o", outputPath}
	for i, p := range paths {
		if i == 0 {
			args = append(args, p)
		} else {
			args = append(args, "+"+p)
		}
	}

	cmd := exec.Command("mkvmerge", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		return errors.NewCommandFailedError("mkvmerge", exitCode, string(out))
	}
	return nil
}

// Merge dispatches to the muxer required by the chunk's encoder, per
// Variant.RequiredMuxer, defaulting to ffmpeg when either works.
func Merge(chunks []Chunk, fpsNum, fpsDen int, muxer config.Muxer, outputPath, tmpDir string) error {
	if muxer == config.MuxerMkvmerge {
		return MergeMkvmerge(chunks, outputPath)
	}
	return MergeFFmpeg(chunks, fpsNum, fpsDen, outputPath, tmpDir)
}
