package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

// recorder captures event names in order.
type recorder struct {
	NullReporter
	events []string
}

func (r *recorder) StageStarted(s StageInfo)         { r.events = append(r.events, "stage:"+s.Stage) }
func (r *recorder) UpscaleProgress(ProgressSnapshot) { r.events = append(r.events, "progress") }
func (r *recorder) Warning(m string)                 { r.events = append(r.events, "warn:"+m) }

func TestCompositeReporterFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	c := NewCompositeReporter(a, nil, b)

	c.StageStarted(StageInfo{Stage: "probe"})
	c.UpscaleProgress(ProgressSnapshot{Completed: 1})
	c.Warning("slow disk")

	want := "stage:probe,progress,warn:slow disk"
	for name, r := range map[string]*recorder{"a": a, "b": b} {
		if got := strings.Join(r.events, ","); got != want {
			t.Errorf("reporter %s events = %q, want %q", name, got, want)
		}
	}
}

func TestDescribeProgress(t *testing.T) {
	tests := []struct {
		name string
		p    ProgressSnapshot
		want string
	}{
		{"known total", ProgressSnapshot{Completed: 3, Total: 12, Percent: 25, Known: true}, "3/12 (25.0%)"},
		{"unknown total", ProgressSnapshot{Completed: 7}, "7 frames"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeProgress(tt.p); got != tt.want {
				t.Errorf("describeProgress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTerminalReporterOutput(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewTerminalReporterWithWriter(&buf)

	r.Environment(EnvironmentSummary{Platform: "linux/amd64", CPUs: 8, GPUName: "NVIDIA T4", FFmpeg: "/tools/ffmpeg", LogFile: "/logs/icecale_run.log"})
	r.VideoInfo(VideoSummary{InputFile: "in.mp4", Width: 640, Height: 360, FrameRate: "30/1", FPS: 30, TotalFrames: 0})
	r.StageStarted(StageInfo{Stage: "upscale", Message: "Upscaling frames"})
	r.UpscaleStarted(0)
	r.UpscaleProgress(ProgressSnapshot{Completed: 1})
	r.Complete(CompletionSummary{OutputFile: "out.mp4", OutputWidth: 2560, OutputHeight: 1440, FramesUpscaled: 1, TotalTime: time.Minute})

	out := buf.String()
	for _, want := range []string{"ENVIRONMENT", "linux/amd64, 8 CPUs", "NVIDIA T4", "/logs/icecale_run.log", "VIDEO", "640x360", "Frames:", "unknown", "UPSCALE", "Upscaling frames", "RESULTS", "2560x1440", "Saved to"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func decodeEvents(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var ev map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestJSONReporterEnvironment(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.Environment(EnvironmentSummary{Platform: "linux/amd64", CPUs: 16, GPUName: "NVIDIA L4", LogFile: "/logs/run.log"})

	events := decodeEvents(t, buf.Bytes())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev["platform"] != "linux/amd64" || ev["cpus"] != float64(16) || ev["log_file"] != "/logs/run.log" {
		t.Errorf("environment event = %v", ev)
	}
}

func TestJSONReporterEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.StageStarted(StageInfo{Stage: "split"})
	r.AudioResult(false)
	r.Complete(CompletionSummary{OutputFile: "out.mp4", FramesUpscaled: 42})

	events := decodeEvents(t, buf.Bytes())
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0]["type"] != "stage" || events[0]["stage"] != "split" {
		t.Errorf("event 0 = %v", events[0])
	}
	if events[1]["has_audio"] != false {
		t.Errorf("event 1 = %v", events[1])
	}
	if events[2]["frames_upscaled"] != float64(42) {
		t.Errorf("event 2 = %v", events[2])
	}
	for i, ev := range events {
		if _, ok := ev["timestamp"]; !ok {
			t.Errorf("event %d has no timestamp", i)
		}
	}
}

func TestJSONReporterThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.UpscaleStarted(1000)
	for i := int64(1); i <= 1000; i++ {
		r.UpscaleProgress(ProgressSnapshot{Completed: i, Total: 1000, Percent: float64(i) / 10, Known: true})
	}

	var progress int
	var last map[string]interface{}
	for _, ev := range decodeEvents(t, buf.Bytes()) {
		if ev["type"] == "upscale_progress" {
			progress++
			last = ev
		}
	}
	// One per 5% bucket from 0 to 100.
	if progress < 20 || progress > 22 {
		t.Errorf("emitted %d progress events, want one per 5%% bucket", progress)
	}
	if last == nil || last["completed"] != float64(1000) {
		t.Errorf("final progress event = %v, want completed 1000", last)
	}
}
