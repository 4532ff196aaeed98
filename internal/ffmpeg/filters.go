package ffmpeg

import (
	"fmt"
	"strings"
)

// VideoFilterChain builds video filter chains.
type VideoFilterChain struct {
	filters []string
}

// NewVideoFilterChain creates a new empty filter chain.
func NewVideoFilterChain() *VideoFilterChain {
	return &VideoFilterChain{}
}

// AddCap adds a shrink-only scale that fits the frame inside maxW x maxH
// while keeping the aspect ratio.
func (c *VideoFilterChain) AddCap(maxW, maxH int) *VideoFilterChain {
	c.filters = append(c.filters, fmt.Sprintf(
		"scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", maxW, maxH))
	return c
}

// AddEvenDimensions rounds both dimensions down to even values, as required
// by yuv420p.
func (c *VideoFilterChain) AddEvenDimensions() *VideoFilterChain {
	c.filters = append(c.filters, "scale=trunc(iw/2)*2:trunc(ih/2)*2")
	return c
}

// Build joins the chain into a single filter string.
func (c *VideoFilterChain) Build() string {
	return strings.Join(c.filters, ",")
}

// ScaleFilter returns the resolution cap applied during assembly.
func ScaleFilter(maxW, maxH int) string {
	return NewVideoFilterChain().AddCap(maxW, maxH).AddEvenDimensions().Build()
}

// CappedDimensions computes the size ScaleFilter produces for a w x h input:
// an aspect-preserving fit inside the cap that never enlarges, followed by
// flooring each side to an even number.
func CappedDimensions(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}

	boxW, boxH := min(maxW, w), min(maxH, h)

	// ffmpeg rescales with round-half-up integer arithmetic.
	fitW := rescale(boxH, w, h)
	fitH := rescale(boxW, h, w)

	outW, outH := min(boxW, fitW), min(boxH, fitH)
	return outW / 2 * 2, outH / 2 * 2
}

// rescale returns a*b/c rounded to nearest.
func rescale(a, b, c int) int {
	return int((int64(a)*int64(b) + int64(c)/2) / int64(c))
}
