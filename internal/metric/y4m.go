package metric

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unsafe"
)

// y4mReader walks a YUV4MPEG2 stream frame by frame, handing back raw
// 4:2:0 10-bit plane pointers suitable for feeding directly to a GPU metric
// processor. Chunks in this pipeline are always extracted as 10-bit y4m
// (see internal/source), so this reader does not handle 8-bit streams.
type y4mReader struct {
	f      *os.File
	r      *bufio.Reader
	width  int
	height int
}

func openY4M(path string) (*y4mReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := bufio.NewReaderSize(f, 1<<20)

	header, err := r.ReadString('\n')
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read y4m header %s: %w", path, err)
	}
	fields := strings.Fields(header)
	if len(fields) == 0 || fields[0] != "YUV4MPEG2" {
		f.Close()
		return nil, fmt.Errorf("%s: not a YUV4MPEG2 stream", path)
	}

	var width, height int
	for _, field := range fields[1:] {
		switch field[0] {
		case 'W':
			width, _ = strconv.Atoi(field[1:])
		case 'H':
			height, _ = strconv.Atoi(field[1:])
		}
	}
	if width == 0 || height == 0 {
		f.Close()
		return nil, fmt.Errorf("%s: missing width/height in y4m header", path)
	}

	return &y4mReader{f: f, r: r, width: width, height: height}, nil
}

func (y *y4mReader) close() error {
	return y.f.Close()
}

// planeFrame is one decoded frame's three 10-bit planes, each sample
// stored little-endian in 2 bytes, plus their byte strides.
type planeFrame struct {
	planes  [3]unsafe.Pointer
	strides [3]int64
	keep    [3][]byte // retains the backing slices so the GC doesn't reclaim them
}

// nextFrame reads one "FRAME" marker and its raw 4:2:0 10-bit payload.
// Returns ok=false at a clean end of stream.
func (y *y4mReader) nextFrame() (planeFrame, bool, error) {
	marker, err := y.r.ReadString('\n')
	if err == io.EOF && marker == "" {
		return planeFrame{}, false, nil
	}
	if err != nil {
		return planeFrame{}, false, fmt.Errorf("read frame marker: %w", err)
	}
	if !strings.HasPrefix(marker, "FRAME") {
		return planeFrame{}, false, fmt.Errorf("unexpected y4m marker %q", marker)
	}

	lumaSamples := y.width * y.height
	chromaW, chromaH := (y.width+1)/2, (y.height+1)/2
	chromaSamples := chromaW * chromaH

	yPlane := make([]byte, lumaSamples*2)
	uPlane := make([]byte, chromaSamples*2)
	vPlane := make([]byte, chromaSamples*2)

	if _, err := io.ReadFull(y.r, yPlane); err != nil {
		return planeFrame{}, false, fmt.Errorf("read Y plane: %w", err)
	}
	if _, err := io.ReadFull(y.r, uPlane); err != nil {
		return planeFrame{}, false, fmt.Errorf("read U plane: %w", err)
	}
	if _, err := io.ReadFull(y.r, vPlane); err != nil {
		return planeFrame{}, false, fmt.Errorf("read V plane: %w", err)
	}

	pf := planeFrame{
		strides: [3]int64{int64(y.width * 2), int64(chromaW * 2), int64(chromaW * 2)},
		keep:    [3][]byte{yPlane, uPlane, vPlane},
	}
	pf.planes[0] = unsafe.Pointer(&yPlane[0])
	pf.planes[1] = unsafe.Pointer(&uPlane[0])
	pf.planes[2] = unsafe.Pointer(&vPlane[0])
	return pf, true, nil
}
