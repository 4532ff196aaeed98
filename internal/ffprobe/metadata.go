// Package ffprobe measures the primary video stream of a file using ffprobe.
package ffprobe

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/runner"
)

// VideoMetadata describes the primary video stream.
type VideoMetadata struct {
	Width  int
	Height int
	// FPS is the average frame rate as a number; 0 when unknown.
	FPS float64
	// FPSRaw is the rate exactly as ffprobe reported it, e.g. "30000/1001"
	// or "0/0". Check FPS before passing it on.
	FPSRaw          string
	DurationSeconds float64
	// TotalFrames is 0 when it could not be determined.
	TotalFrames int64
}

// probeArgs builds the single structured query run against input.
// nk=0 makes every field self-describing as key=value.
func probeArgs(input string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=nb_read_frames,nb_frames,width,height,avg_frame_rate,duration",
		"-of", "csv=p=0:nk=0",
		input,
	}
}

// Probe runs ffprobe on input and returns the metadata of its first video stream.
func Probe(ctx context.Context, r runner.Runner, ffprobePath, input string) (*VideoMetadata, error) {
	out, err := r.Run(ctx, ffprobePath, probeArgs(input)...)
	if err != nil {
		return nil, ierrors.WithStage(err, ierrors.StageProbe)
	}
	if !out.Success() {
		return nil, ierrors.NewStageFailureError(ierrors.StageProbe,
			fmt.Sprintf("ffprobe could not read %s", input), ffprobePath, out.ExitCode, out.Output)
	}

	meta, err := ParseProbeLine(probeLine(out.Output))
	if err != nil {
		return nil, err
	}

	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, ierrors.NewProbeParseError(
			fmt.Sprintf("invalid dimensions in %s: %dx%d", input, meta.Width, meta.Height))
	}

	return meta, nil
}

// probeLine picks the stream record out of the combined output. Decoder
// errors printed while counting frames may precede it.
func probeLine(output string) string {
	var fallback string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, keyWidth+"=") {
			return line
		}
		if fallback == "" && !strings.HasPrefix(line, "[") && strings.Count(line, ",") >= len(positionalKeys)-1 {
			fallback = line
		}
	}
	if fallback != "" {
		return fallback
	}
	return runner.Outcome{Output: output}.FirstLine()
}

// Field names in the probe query.
const (
	keyFramesCounted  = "nb_read_frames"
	keyFramesDeclared = "nb_frames"
	keyWidth          = "width"
	keyHeight         = "height"
	keyFrameRate      = "avg_frame_rate"
	keyDuration       = "duration"
)

// positionalKeys is the field order of a line without key=value pairs.
var positionalKeys = []string{
	keyFramesCounted,
	keyFramesDeclared,
	keyWidth,
	keyHeight,
	keyFrameRate,
	keyDuration,
}

// ParseProbeLine parses one line of probe output.
//
// The line holds at least six comma-separated fields, either all of the form
// key=value in any order, or bare values in the order frames counted, frames
// declared, width, height, average frame rate, duration. N/A or empty values
// mean unknown.
func ParseProbeLine(line string) (*VideoMetadata, error) {
	line = strings.TrimSpace(line)
	fields := strings.Split(line, ",")
	if line == "" || len(fields) < len(positionalKeys) {
		return nil, ierrors.NewProbeParseError(
			fmt.Sprintf("expected %d fields in probe output, got %q", len(positionalKeys), line))
	}

	values := make(map[string]string, len(positionalKeys))
	if strings.Contains(line, "=") {
		for _, f := range fields {
			key, value, ok := strings.Cut(f, "=")
			if !ok {
				return nil, ierrors.NewProbeParseError(fmt.Sprintf("malformed probe field %q", f))
			}
			values[strings.TrimSpace(key)] = value
		}
	} else {
		for i, key := range positionalKeys {
			values[key] = fields[i]
		}
	}

	counted, err := parseCount(keyFramesCounted, values[keyFramesCounted])
	if err != nil {
		return nil, err
	}
	declared, err := parseCount(keyFramesDeclared, values[keyFramesDeclared])
	if err != nil {
		return nil, err
	}
	width, err := parseCount(keyWidth, values[keyWidth])
	if err != nil {
		return nil, err
	}
	height, err := parseCount(keyHeight, values[keyHeight])
	if err != nil {
		return nil, err
	}

	rawRate := strings.TrimSpace(values[keyFrameRate])
	fps, err := ParseFrameRate(rawRate)
	if err != nil {
		return nil, err
	}

	duration, err := parseFloat(keyDuration, values[keyDuration])
	if err != nil {
		return nil, err
	}

	return &VideoMetadata{
		Width:           int(max(width, 0)),
		Height:          int(max(height, 0)),
		FPS:             fps,
		FPSRaw:          rawRate,
		DurationSeconds: duration,
		TotalFrames:     ResolveTotalFrames(counted, declared, duration, fps),
	}, nil
}

// ParseFrameRate parses a rate given as a decimal or as a fraction n/d.
// A zero denominator or an unknown value yields 0.
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if isUnknown(s) {
		return 0, nil
	}

	num, den, isFraction := strings.Cut(s, "/")
	if !isFraction {
		return parseFloat(keyFrameRate, s)
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, ierrors.NewProbeParseError(fmt.Sprintf("invalid frame rate %q", s))
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, ierrors.NewProbeParseError(fmt.Sprintf("invalid frame rate %q", s))
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

// ResolveTotalFrames picks the best available frame count: the decoded count,
// then the container's declared count, then duration times rate. Returns 0
// when none is usable.
func ResolveTotalFrames(counted, declared int64, duration, fps float64) int64 {
	switch {
	case counted > 0:
		return counted
	case declared > 0:
		return declared
	case duration > 0 && fps > 0:
		return int64(math.Round(duration * fps))
	default:
		return 0
	}
}

func isUnknown(s string) bool {
	return s == "" || strings.EqualFold(s, "N/A")
}

// parseCount returns -1 for unknown values.
func parseCount(name, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if isUnknown(s) {
		return -1, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ierrors.NewProbeParseError(fmt.Sprintf("invalid %s %q", name, s))
	}
	return v, nil
}

// parseFloat returns 0 for unknown values.
func parseFloat(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if isUnknown(s) {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ierrors.NewProbeParseError(fmt.Sprintf("invalid %s %q", name, s))
	}
	return v, nil
}
