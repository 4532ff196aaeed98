// Package ffmpeg builds and runs the ffmpeg invocations that split a video
// into frames and audio and reassemble upscaled frames into a video.
package ffmpeg

// CommandBuilder assembles an ffmpeg argument list with method chaining.
// Every invocation overwrites its outputs (-y).
type CommandBuilder struct {
	args []string
}

// NewCommandBuilder creates a builder whose first argument is -y.
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{args: []string{"-y"}}
}

// Input adds an input file.
func (b *CommandBuilder) Input(path string) *CommandBuilder {
	b.args = append(b.args, "-i", path)
	return b
}

// FrameRate declares the rate of the next image-sequence input.
func (b *CommandBuilder) FrameRate(rate string) *CommandBuilder {
	b.args = append(b.args, "-framerate", rate)
	return b
}

// Map selects a stream for the output.
func (b *CommandBuilder) Map(stream string) *CommandBuilder {
	b.args = append(b.args, "-map", stream)
	return b
}

// VideoFilter sets the -vf filter graph. An empty filter is skipped.
func (b *CommandBuilder) VideoFilter(filter string) *CommandBuilder {
	if filter != "" {
		b.args = append(b.args, "-vf", filter)
	}
	return b
}

// Option adds a flag and its value.
func (b *CommandBuilder) Option(flag, value string) *CommandBuilder {
	b.args = append(b.args, flag, value)
	return b
}

// Flag adds a flag without a value.
func (b *CommandBuilder) Flag(flag string) *CommandBuilder {
	b.args = append(b.args, flag)
	return b
}

// Output adds the output path and returns the finished argument list.
func (b *CommandBuilder) Output(path string) []string {
	return append(append([]string(nil), b.args...), path)
}
