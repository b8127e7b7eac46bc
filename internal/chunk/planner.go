// Package chunk folds a scene list into an ordered list of Chunks, tracks
// their completion state for the worker pool, and concatenates finished
// segments into the final output container.
package chunk

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/five82/av1an/internal/encoder"
	"github.com/five82/av1an/internal/scene"
)

// Status is a chunk's runtime lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusEncoding
	StatusDone
	StatusFailed
)

// Chunk is one contiguous, independently encoded frame range. It is
// immutable after planning except for Quantizer (set by the target-quality
// controller when enabled) and Status.
type Chunk struct {
	Idx         int
	Start       int
	End         int
	SegmentPath string
	Quantizer   int // 0 until set by the user's flat value or the TQ controller
	Passes      int
	Status      Status
}

// Frames returns the number of frames in this chunk.
func (c Chunk) Frames() int {
	return c.End - c.Start
}

// Plan folds scenes into a dense, 0-indexed Chunk list, assigning each a
// segment filename of <index>.<ext> inside splitDir, where ext is chosen
// per the target encoder.
func Plan(scenes []scene.Scene, variant encoder.Variant, splitDir string, passes int) []Chunk {
	ext := variant.SegmentExt()
	chunks := make([]Chunk, len(scenes))
	for i, sc := range scenes {
		chunks[i] = Chunk{
			Idx:         i,
			Start:       sc.StartFrame,
			End:         sc.EndFrame,
			SegmentPath: filepath.Join(splitDir, fmt.Sprintf("%d.%s", i, ext)),
			Passes:      passes,
			Status:      StatusPending,
		}
	}
	return chunks
}

// Set is a thread-safe collection of Chunks, queried by index and updated
// as the worker pool encodes them.
type Set struct {
	mu     sync.Mutex
	chunks map[int]*Chunk
}

// NewSet builds a Set from a planned Chunk list.
func NewSet(chunks []Chunk) *Set {
	s := &Set{chunks: make(map[int]*Chunk, len(chunks))}
	for i := range chunks {
		c := chunks[i]
		s.chunks[c.Idx] = &c
	}
	return s
}

// Get returns a copy of the chunk at idx.
func (s *Set) Get(idx int) (Chunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[idx]
	if !ok {
		return Chunk{}, false
	}
	return *c, true
}

// SetQuantizer records the quantizer chosen for a chunk, either the flat
// user value or the target-quality controller's search result.
func (s *Set) SetQuantizer(idx, quantizer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[idx]; ok {
		c.Quantizer = quantizer
	}
}

// SetStatus records a chunk's lifecycle transition.
func (s *Set) SetStatus(idx int, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[idx]; ok {
		c.Status = status
	}
}

// All returns a snapshot of every chunk, ordered by index.
func (s *Set) All() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, *c)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Idx < out[j-1].Idx; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
