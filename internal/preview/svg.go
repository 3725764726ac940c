package preview

import (
	"fmt"
	"html"
)

// svgTemplate stretches the placeholder over the original dimensions and
// blurs it, keeping edges opaque.
const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">` +
	`<filter id="b" color-interpolation-filters="sRGB">` +
	`<feGaussianBlur stdDeviation="%d"/>` +
	`<feColorMatrix values="1 0 0 0 0 0 1 0 0 0 0 0 1 0 0 0 0 0 100 -1" result="s"/>` +
	`<feFlood x="0" y="0" width="100%%" height="100%%"/>` +
	`<feComposite operator="out" in="s"/>` +
	`<feComposite in2="SourceGraphic"/>` +
	`<feGaussianBlur stdDeviation="%d"/>` +
	`</filter>` +
	`<image width="100%%" height="100%%" x="0" y="0" preserveAspectRatio="xMidYMid" filter="url(#b)" href="%s"/>` +
	`</svg>`

// DefaultBlurDeviation is the gaussian standard deviation of SVG.
const DefaultBlurDeviation = 20

// SVG wraps uri in an SVG document sized width x height that applies a
// gaussian blur to the upscaled placeholder.
func SVG(uri string, width, height, deviation int) string {
	if deviation <= 0 {
		deviation = DefaultBlurDeviation
	}
	return fmt.Sprintf(svgTemplate, width, height, deviation, deviation, html.EscapeString(uri))
}
