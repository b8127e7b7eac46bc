// Package discovery finds the video files a directory input expands to
// before each is handed to processing.Run in turn.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/five82/av1an/internal/util"
)

// DiscoveryLogger defines the interface for discovery logging.
type DiscoveryLogger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// Result contains the results of file discovery with metadata.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles finds video files in the given directory, sorted
// alphabetically by filename. It is a convenience wrapper around
// FindVideoFilesWithLogging for callers that don't need skip counts or
// discovery logging.
func FindVideoFiles(inputDir string) ([]string, error) {
	result, err := FindVideoFilesWithLogging(inputDir, nil)
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// FindVideoFilesWithLogging scans inputDir for files util.IsVideoFile
// recognizes, skipping hidden files and subdirectories, and logs discovery
// progress through logger (the first 5 files found, plus a count summary).
// logger may be nil. Returns an error if inputDir doesn't exist, isn't a
// directory, or contains no video files.
func FindVideoFilesWithLogging(inputDir string, logger DiscoveryLogger) (*Result, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", inputDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", inputDir)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", inputDir, err)
	}

	result := &Result{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fullPath := filepath.Join(inputDir, entry.Name())
		if util.IsVideoFile(fullPath) {
			result.Files = append(result.Files, fullPath)
		} else {
			result.SkippedCount++
		}
	}

	if len(result.Files) == 0 {
		return nil, fmt.Errorf("no video files found in %s", inputDir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(result.Files[i])) < strings.ToLower(filepath.Base(result.Files[j]))
	})

	if logger != nil {
		logDiscoveredFiles(result.Files, logger)
	}
	return result, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(files []string, logger DiscoveryLogger) {
	logger.Info("Found %d video file(s)", len(files))

	maxToLog := min(5, len(files))
	for i := range maxToLog {
		logger.Debug("  %s", filepath.Base(files[i]))
	}
	if len(files) > 5 {
		logger.Debug("  ... and %d more", len(files)-5)
	}
}
