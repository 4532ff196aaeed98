// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// EnvironmentSummary describes the validated GPU and collaborators.
type EnvironmentSummary struct {
	Hostname string
	Platform string
	CPUs     int
	GPUName  string
	FFmpeg   string
	FFprobe  string
	Upscaler string
	// LogFile is empty when file logging is disabled.
	LogFile  string
}

// VideoSummary describes the input after probing.
type VideoSummary struct {
	InputFile       string
	OutputFile      string
	Width           int
	Height          int
	FrameRate       string
	FPS             float64
	DurationSeconds float64
	TotalFrames     int64
	OutputWidth     int
	OutputHeight    int
}

// StageInfo marks the start of a pipeline stage.
type StageInfo struct {
	Stage   string
	Message string
}

// ProgressSnapshot contains upscale progress information.
type ProgressSnapshot struct {
	Completed int64
	Total     int64
	// Percent is meaningful only when Known is true.
	Percent float64
	Known   bool
}

// CompletionSummary contains final run results.
type CompletionSummary struct {
	InputFile      string
	OutputFile     string
	InputSize      uint64
	OutputSize     uint64
	OutputWidth    int
	OutputHeight   int
	HasAudio       bool
	FramesUpscaled int64
	TotalTime      time.Duration
}
