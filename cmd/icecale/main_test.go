package main

import (
	"strings"
	"testing"

	ierrors "github.com/five82/icecale/internal/errors"
)

func TestFormatError(t *testing.T) {
	err := ierrors.NewStageFailureError(ierrors.StageAssemble, "failed to assemble video", "ffmpeg", 1,
		"[h264_nvenc @ 0x55] OpenEncodeSessionEx failed\nError initializing output stream\n")

	got := formatError(err)
	if strings.Contains(got, "\n") {
		t.Errorf("formatError() spans lines: %q", got)
	}
	for _, want := range []string{"Error: assemble:", "OpenEncodeSessionEx failed | Error initializing output stream"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatError() = %q, missing %q", got, want)
		}
	}
}

func TestUsageArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"no args", nil, true},
		{"one arg", []string{"in.mp4"}, true},
		{"two args", []string{"in.mp4", "out.mp4"}, false},
		{"three args", []string{"a", "b", "c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := usageArgs(newRootCommand(), tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("usageArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.HasPrefix(err.Error(), "Usage: icecale") {
				t.Errorf("usageArgs() error = %q", err.Error())
			}
		})
	}
}

func TestRootCommandRejectsMissingArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"only-input.mp4"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() expected usage error")
	}
}
