// Package metric scores an encoded probe against its source so the
// target-quality controller can decide whether a chunk's quantizer needs
// to move up or down.
package metric

import "context"

// Scorer computes a perceptual quality score for a distorted file against
// its reference, along with per-frame scores when the underlying tool
// reports them.
type Scorer interface {
	Score(ctx context.Context, referencePath, distortedPath string, frameRate float64) (score float64, frameScores []float64, err error)
}
