package source

import "strings"

// errorBuffer collects a command's stderr for inclusion in error messages,
// without holding an unbounded amount of encoder chatter in memory.
type errorBuffer struct {
	b strings.Builder
}

const maxErrorBufferBytes = 8192

func (e *errorBuffer) Write(p []byte) (int, error) {
	if e.b.Len() < maxErrorBufferBytes {
		remaining := maxErrorBufferBytes - e.b.Len()
		if len(p) > remaining {
			e.b.Write(p[:remaining])
		} else {
			e.b.Write(p)
		}
	}
	return len(p), nil
}

func (e *errorBuffer) String() string {
	return e.b.String()
}
