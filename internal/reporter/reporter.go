package reporter

// Reporter receives pipeline events in stage order.
type Reporter interface {
	Environment(summary EnvironmentSummary)
	VideoInfo(summary VideoSummary)
	StageStarted(stage StageInfo)
	AudioResult(hasAudio bool)
	UpscaleStarted(totalFrames int64)
	UpscaleProgress(progress ProgressSnapshot)
	Complete(summary CompletionSummary)
	Warning(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Environment(EnvironmentSummary)   {}
func (NullReporter) VideoInfo(VideoSummary)           {}
func (NullReporter) StageStarted(StageInfo)           {}
func (NullReporter) AudioResult(bool)                 {}
func (NullReporter) UpscaleStarted(int64)             {}
func (NullReporter) UpscaleProgress(ProgressSnapshot) {}
func (NullReporter) Complete(CompletionSummary)       {}
func (NullReporter) Warning(string)                   {}
