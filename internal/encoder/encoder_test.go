package encoder

import (
	"strings"
	"testing"

	"github.com/five82/av1an/internal/config"
	"github.com/five82/av1an/internal/videoinfo"
)

func TestFromConfig(t *testing.T) {
	tests := []struct {
		in   config.Encoder
		want Variant
	}{
		{config.EncoderAom, AOM},
		{config.EncoderRav1e, Rav1e},
		{config.EncoderSVT, SvtAV1},
		{config.EncoderVPX, VPX},
		{config.EncoderX265, X265},
		{config.EncoderX264, X264},
	}
	for _, tt := range tests {
		got, err := FromConfig(tt.in)
		if err != nil {
			t.Fatalf("FromConfig(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FromConfig(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := FromConfig(config.Encoder("bogus")); err == nil {
		t.Error("FromConfig(bogus) expected an error, got nil")
	}
}

func TestSegmentExt(t *testing.T) {
	tests := []struct {
		v    Variant
		want string
	}{
		{AOM, "ivf"}, {Rav1e, "ivf"}, {SvtAV1, "ivf"}, {VPX, "ivf"},
		{X265, "h265"}, {X264, "h264"},
	}
	for _, tt := range tests {
		if got := tt.v.SegmentExt(); got != tt.want {
			t.Errorf("%v.SegmentExt() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestRequiredMuxer(t *testing.T) {
	if m := X265.RequiredMuxer(); m != config.MuxerMkvmerge {
		t.Errorf("X265.RequiredMuxer() = %q, want mkvmerge", m)
	}
	if m := SvtAV1.RequiredMuxer(); m != "" {
		t.Errorf("SvtAV1.RequiredMuxer() = %q, want \"\"", m)
	}
}

func TestStripQuantizerFlag(t *testing.T) {
	args := []string{"--tune", "3", "--crf", "28", "--film-grain", "8"}
	out, removed := StripQuantizerFlag(SvtAV1, args)
	if !removed {
		t.Fatal("StripQuantizerFlag() removed = false, want true")
	}
	want := []string{"--tune", "3", "--film-grain", "8"}
	if strings.Join(out, " ") != strings.Join(want, " ") {
		t.Errorf("StripQuantizerFlag() = %v, want %v", out, want)
	}

	out, removed = StripQuantizerFlag(SvtAV1, []string{"--tune", "3"})
	if removed {
		t.Error("StripQuantizerFlag() removed = true, want false when flag absent")
	}
	if strings.Join(out, " ") != "--tune 3" {
		t.Errorf("StripQuantizerFlag() = %v, want unchanged", out)
	}
}

func TestSvtBuilderBuildArgvIncludesQuantizerAndDimensions(t *testing.T) {
	b, err := NewBuilder(SvtAV1)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	p := Params{
		Info:       &videoinfo.VideoInfo{FPSNum: 24000, FPSDen: 1001, PixFormat: videoinfo.PixelFormatYUV420P10LE, BitDepth: videoinfo.BitDepth10},
		Width:      1920,
		Height:     1080,
		Frames:     48,
		Quantizer:  32,
		OutputPath: "/tmp/0.ivf",
	}
	argv := b.BuildArgv(p)
	joined := strings.Join(argv, " ")
	for _, want := range []string{"--width 1920", "--height 1080", "--frames 48", "--crf 32", "-b /tmp/0.ivf"} {
		if !strings.Contains(joined, want) {
			t.Errorf("BuildArgv() = %q, missing %q", joined, want)
		}
	}
}

func TestSvtBuilderParseProgress(t *testing.T) {
	b, _ := NewBuilder(SvtAV1)
	frames, ok := b.ParseProgress("Encoding frame    42 1.23 kbps")
	if !ok || frames != 42 {
		t.Errorf("ParseProgress() = %d, %v, want 42, true", frames, ok)
	}
	if _, ok := b.ParseProgress("SVT [warning]: some unrelated line"); ok {
		t.Error("ParseProgress() matched an unrelated line")
	}
}
