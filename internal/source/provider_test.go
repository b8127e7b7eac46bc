package source

import (
	"fmt"
	"testing"

	"github.com/five82/av1an/internal/config"
)

func TestNewReturnsExpectedProviderType(t *testing.T) {
	tests := []struct {
		method config.ChunkMethod
		want   any
	}{
		{config.ChunkMethodFFMS2, &Indexed{}},
		{config.ChunkMethodSelect, &SelectFilter{}},
		{config.ChunkMethodLSMASH, &PipedRange{}},
		{config.ChunkMethodHybrid, &Hybrid{}},
		{"", &Hybrid{}},
	}
	for _, tt := range tests {
		got, err := New(tt.method)
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.method, err)
		}
		if gotType, wantType := fmt.Sprintf("%T", got), fmt.Sprintf("%T", tt.want); gotType != wantType {
			t.Errorf("New(%q) = %s, want %s", tt.method, gotType, wantType)
		}
	}
}

func TestNewRejectsUnknownMethod(t *testing.T) {
	if _, err := New(config.ChunkMethod("bogus")); err == nil {
		t.Error("New(bogus) expected an error, got nil")
	}
}
