package metric

import (
	"os"
	"path/filepath"
	"testing"
)

func writeY4M(t *testing.T, width, height int, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.y4m")

	chromaW, chromaH := (width+1)/2, (height+1)/2
	lumaBytes := width * height * 2
	chromaBytes := chromaW * chromaH * 2

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString("YUV4MPEG2 W" + itoa(width) + " H" + itoa(height) + " F30:1 Ip A1:1 C420p10\n"); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i := 0; i < frames; i++ {
		if _, err := f.WriteString("FRAME\n"); err != nil {
			t.Fatalf("write frame marker: %v", err)
		}
		if _, err := f.Write(make([]byte, lumaBytes)); err != nil {
			t.Fatalf("write Y: %v", err)
		}
		if _, err := f.Write(make([]byte, chromaBytes)); err != nil {
			t.Fatalf("write U: %v", err)
		}
		if _, err := f.Write(make([]byte, chromaBytes)); err != nil {
			t.Fatalf("write V: %v", err)
		}
	}
	return path
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestOpenY4MHeader(t *testing.T) {
	path := writeY4M(t, 64, 48, 2)

	r, err := openY4M(path)
	if err != nil {
		t.Fatalf("openY4M error = %v", err)
	}
	defer r.close()

	if r.width != 64 || r.height != 48 {
		t.Errorf("dimensions = %dx%d, want 64x48", r.width, r.height)
	}
}

func TestY4MNextFrame(t *testing.T) {
	path := writeY4M(t, 64, 48, 2)

	r, err := openY4M(path)
	if err != nil {
		t.Fatalf("openY4M error = %v", err)
	}
	defer r.close()

	count := 0
	for {
		_, ok, err := r.nextFrame()
		if err != nil {
			t.Fatalf("nextFrame error = %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d frames, want 2", count)
	}
}

func TestOpenY4MRejectsNonY4M(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.y4m")
	if err := os.WriteFile(path, []byte("not a y4m file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := openY4M(path); err == nil {
		t.Fatal("expected error opening a non-y4m file")
	}
}
