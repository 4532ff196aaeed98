package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter. Nil reporters are skipped.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	c := &CompositeReporter{}
	for _, r := range reporters {
		if r != nil {
			c.reporters = append(c.reporters, r)
		}
	}
	return c
}

func (c *CompositeReporter) Environment(summary EnvironmentSummary) {
	for _, r := range c.reporters {
		r.Environment(summary)
	}
}

func (c *CompositeReporter) VideoInfo(summary VideoSummary) {
	for _, r := range c.reporters {
		r.VideoInfo(summary)
	}
}

func (c *CompositeReporter) StageStarted(stage StageInfo) {
	for _, r := range c.reporters {
		r.StageStarted(stage)
	}
}

func (c *CompositeReporter) AudioResult(hasAudio bool) {
	for _, r := range c.reporters {
		r.AudioResult(hasAudio)
	}
}

func (c *CompositeReporter) UpscaleStarted(totalFrames int64) {
	for _, r := range c.reporters {
		r.UpscaleStarted(totalFrames)
	}
}

func (c *CompositeReporter) UpscaleProgress(progress ProgressSnapshot) {
	for _, r := range c.reporters {
		r.UpscaleProgress(progress)
	}
}

func (c *CompositeReporter) Complete(summary CompletionSummary) {
	for _, r := range c.reporters {
		r.Complete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}
