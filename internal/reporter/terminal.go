package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/five82/icecale/internal/util"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	out      io.Writer
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	magenta  *color.Color
	bold     *color.Color
}

// NewTerminalReporter creates a terminal reporter writing to stdout.
// Stderr is left for the final error line.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterWithWriter(os.Stdout)
}

// NewTerminalReporterWithWriter creates a terminal reporter with a custom writer.
func NewTerminalReporterWithWriter(w io.Writer) *TerminalReporter {
	return &TerminalReporter{
		out:     w,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
}

func (r *TerminalReporter) heading(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Environment(summary EnvironmentSummary) {
	r.heading("ENVIRONMENT")
	const w = 9
	if summary.Hostname != "" {
		r.printLabel(w, "Host:", summary.Hostname)
	}
	if summary.Platform != "" {
		r.printLabel(w, "Platform:", fmt.Sprintf("%s, %d CPUs", summary.Platform, summary.CPUs))
	}
	r.printLabel(w, "GPU:", r.green.Sprint(summary.GPUName))
	r.printLabel(w, "ffmpeg:", summary.FFmpeg)
	r.printLabel(w, "ffprobe:", summary.FFprobe)
	r.printLabel(w, "Upscaler:", summary.Upscaler)
	if summary.LogFile != "" {
		r.printLabel(w, "Log:", summary.LogFile)
	}
}

func (r *TerminalReporter) VideoInfo(summary VideoSummary) {
	r.heading("VIDEO")
	const w = 11
	r.printLabel(w, "File:", summary.InputFile)
	r.printLabel(w, "Output:", summary.OutputFile)
	r.printLabel(w, "Resolution:", util.FormatResolution(summary.Width, summary.Height))
	r.printLabel(w, "Duration:", util.FormatDuration(summary.DurationSeconds))
	rate := "unknown"
	if summary.FPS > 0 {
		rate = fmt.Sprintf("%s (%.3f fps)", summary.FrameRate, summary.FPS)
	}
	r.printLabel(w, "Frame rate:", rate)
	r.printLabel(w, "Frames:", util.FormatFrameCount(summary.TotalFrames))
	r.printLabel(w, "Target:", util.FormatResolution(summary.OutputWidth, summary.OutputHeight))
}

func (r *TerminalReporter) StageStarted(stage StageInfo) {
	r.finishProgress()
	r.heading(strings.ToUpper(stage.Stage))
	if stage.Message != "" {
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.magenta.Sprint("›"), stage.Message)
	}
}

func (r *TerminalReporter) AudioResult(hasAudio bool) {
	status := color.New(color.Faint).Sprint("no audio track")
	if hasAudio {
		status = r.green.Sprint("copied")
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Audio:"), status)
}

func (r *TerminalReporter) UpscaleStarted(totalFrames int64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	// A max of -1 renders an indeterminate bar that only counts.
	limit := totalFrames
	if limit <= 0 {
		limit = -1
	}

	r.progress = progressbar.NewOptions64(
		limit,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Upscaling [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) UpscaleProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	_ = r.progress.Set64(progress.Completed)
	r.progress.Describe(describeProgress(progress))
}

// describeProgress renders "completed/total (pct%)", or just the count when
// the total is unknown.
func describeProgress(p ProgressSnapshot) string {
	if !p.Known {
		return fmt.Sprintf("%d frames", p.Completed)
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", p.Completed, p.Total, p.Percent)
}

func (r *TerminalReporter) Complete(summary CompletionSummary) {
	r.finishProgress()

	r.heading("RESULTS")
	const w = 11
	r.printLabel(w, "Output:", r.bold.Sprint(summary.OutputFile))
	r.printLabel(w, "Resolution:", util.FormatResolution(summary.OutputWidth, summary.OutputHeight))
	r.printLabel(w, "Frames:", fmt.Sprintf("%d upscaled", summary.FramesUpscaled))
	audio := "none"
	if summary.HasAudio {
		audio = "copied"
	}
	r.printLabel(w, "Audio:", audio)
	r.printLabel(w, "Size:", fmt.Sprintf("%s -> %s",
		util.FormatBytes(summary.InputSize), util.FormatBytes(summary.OutputSize)))
	r.printLabel(w, "Time:", util.FormatDuration(summary.TotalTime.Seconds()))
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputFile))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}
