package worker

import "github.com/five82/av1an/internal/util"

// calculatePermits determines the number of in-flight chunk permits based
// on the requested worker count and available system memory.
//
// baseWorkers is the requested parallelism (config.Workers, or an
// auto-sized default). The function caps permits to at most memFraction of
// available system memory, accounting for the chunk's decoded YUV buffer
// plus a fixed per-encoder-process overhead estimate. Returns at least 1.
func calculatePermits(baseWorkers int, width, height, avgFramesPerChunk int, memFraction float64) int {
	permits := max(baseWorkers, 1)

	chunkMemBytes := chunkMemoryBytes(width, height, avgFramesPerChunk)
	memPermits := util.MaxPermitsForMemory(chunkMemBytes, memFraction)
	if memPermits < permits {
		permits = memPermits
	}
	return permits
}

// chunkMemoryBytes estimates the memory footprint of one in-flight chunk:
// its decoded 10-bit YUV420 buffer plus a fixed overhead for the external
// encoder process. Used to cap concurrency and for verbose logging.
func chunkMemoryBytes(width, height, avgFramesPerChunk int) uint64 {
	frameSize := uint64(width) * uint64(height) * 3
	yuvMemBytes := frameSize * uint64(avgFramesPerChunk)
	const encoderProcessOverhead = uint64(1) << 30 // ~1 GB per encoder process
	return yuvMemBytes + encoderProcessOverhead
}
