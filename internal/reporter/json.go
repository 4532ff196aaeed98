package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON object per event (NDJSON) for machine consumers.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v map[string]interface{}) {
	v["timestamp"] = r.timestamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Environment(summary EnvironmentSummary) {
	r.write(map[string]interface{}{
		"type":     "environment",
		"hostname": summary.Hostname,
		"platform": summary.Platform,
		"cpus":     summary.CPUs,
		"gpu":      summary.GPUName,
		"ffmpeg":   summary.FFmpeg,
		"ffprobe":  summary.FFprobe,
		"upscaler": summary.Upscaler,
		"log_file": summary.LogFile,
	})
}

func (r *JSONReporter) VideoInfo(summary VideoSummary) {
	r.write(map[string]interface{}{
		"type":             "video",
		"input_file":       summary.InputFile,
		"output_file":      summary.OutputFile,
		"width":            summary.Width,
		"height":           summary.Height,
		"frame_rate":       summary.FrameRate,
		"fps":              summary.FPS,
		"duration_seconds": summary.DurationSeconds,
		"total_frames":     summary.TotalFrames,
		"output_width":     summary.OutputWidth,
		"output_height":    summary.OutputHeight,
	})
}

func (r *JSONReporter) StageStarted(stage StageInfo) {
	r.write(map[string]interface{}{
		"type":    "stage",
		"stage":   stage.Stage,
		"message": stage.Message,
	})
}

func (r *JSONReporter) AudioResult(hasAudio bool) {
	r.write(map[string]interface{}{
		"type":      "audio",
		"has_audio": hasAudio,
	})
}

func (r *JSONReporter) UpscaleStarted(totalFrames int64) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":         "upscale_started",
		"total_frames": totalFrames,
	})
}

// UpscaleProgress emits at most one event per 5% bucket, plus one at least
// every five seconds and always the final frame.
func (r *JSONReporter) UpscaleProgress(progress ProgressSnapshot) {
	const progressBucketSize = 5
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent) / progressBucketSize
	now := time.Now()
	final := progress.Known && progress.Completed >= progress.Total

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := (progress.Known && bucket > r.lastProgressBucket) || intervalElapsed || final

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	event := map[string]interface{}{
		"type":      "upscale_progress",
		"completed": progress.Completed,
		"total":     progress.Total,
	}
	if progress.Known {
		event["percent"] = progress.Percent
	}
	r.write(event)
}

func (r *JSONReporter) Complete(summary CompletionSummary) {
	r.write(map[string]interface{}{
		"type":             "complete",
		"input_file":       summary.InputFile,
		"output_file":      summary.OutputFile,
		"input_size":       summary.InputSize,
		"output_size":      summary.OutputSize,
		"output_width":     summary.OutputWidth,
		"output_height":    summary.OutputHeight,
		"has_audio":        summary.HasAudio,
		"frames_upscaled":  summary.FramesUpscaled,
		"duration_seconds": int64(summary.TotalTime.Seconds()),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":    "warning",
		"message": message,
	})
}
