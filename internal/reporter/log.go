package reporter

import "github.com/five82/icecale/internal/logging"

// LogReporter mirrors pipeline events into the structured log.
type LogReporter struct {
	log *logging.Logger
}

// NewLogReporter creates a reporter that writes events to l, or to the
// global logger when l is nil.
func NewLogReporter(l *logging.Logger) *LogReporter {
	return &LogReporter{log: logging.OrGlobal(l).WithComponent("reporter")}
}

func (r *LogReporter) Environment(s EnvironmentSummary) {
	r.log.Info("environment validated", "platform", s.Platform, "cpus", s.CPUs, "gpu", s.GPUName, "ffmpeg", s.FFmpeg, "ffprobe", s.FFprobe, "upscaler", s.Upscaler)
}

func (r *LogReporter) VideoInfo(s VideoSummary) {
	r.log.Info("video probed",
		"input", s.InputFile,
		"width", s.Width,
		"height", s.Height,
		"frame_rate", s.FrameRate,
		"duration", s.DurationSeconds,
		"total_frames", s.TotalFrames,
		"output_width", s.OutputWidth,
		"output_height", s.OutputHeight,
	)
}

func (r *LogReporter) StageStarted(s StageInfo) {
	r.log.Info("stage started", "stage", s.Stage, "message", s.Message)
}

func (r *LogReporter) AudioResult(hasAudio bool) {
	r.log.Info("audio extraction finished", "has_audio", hasAudio)
}

func (r *LogReporter) UpscaleStarted(totalFrames int64) {
	r.log.Info("upscale started", "total_frames", totalFrames)
}

func (r *LogReporter) UpscaleProgress(p ProgressSnapshot) {
	r.log.Debug("frame upscaled", "completed", p.Completed, "total", p.Total)
}

func (r *LogReporter) Complete(s CompletionSummary) {
	r.log.Info("run complete",
		"output", s.OutputFile,
		"output_size", s.OutputSize,
		"frames", s.FramesUpscaled,
		"has_audio", s.HasAudio,
		"elapsed", s.TotalTime,
	)
}

func (r *LogReporter) Warning(message string) {
	r.log.Warn(message)
}
