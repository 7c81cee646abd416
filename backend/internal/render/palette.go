package render

import (
	"image/color"

	"network-journal/backend/internal/scene"
)

// Style is the precomputed colour set for one node type
type Style struct {
	Fill   color.NRGBA
	Light  color.NRGBA
	Dark   color.NRGBA
	Stroke color.NRGBA
	Glow   color.NRGBA
}

var (
	background = color.NRGBA{15, 23, 42, 255}
	linkColor  = color.NRGBA{148, 163, 184, 255}
	white      = color.NRGBA{255, 255, 255, 255}
	black      = color.NRGBA{0, 0, 0, 255}
)

var baseColors = map[scene.NodeType]color.NRGBA{
	scene.TypeUnknown:     {142, 142, 147, 255},
	scene.TypePerson:      {79, 142, 247, 255},
	scene.TypeCompany:     {52, 199, 89, 255},
	scene.TypeTopic:       {175, 82, 222, 255},
	scene.TypeEvent:       {255, 149, 0, 255},
	scene.TypeLocation:    {255, 59, 48, 255},
	scene.TypeInteraction: {90, 200, 250, 255},
}

// styles is indexed by scene.NodeType
var styles = buildStyles()

func buildStyles() []Style {
	types := scene.NodeTypes()
	out := make([]Style, len(types))
	for _, t := range types {
		base := baseColors[t]
		out[t] = Style{
			Fill:   base,
			Light:  mix(base, white, 0.35),
			Dark:   mix(base, black, 0.35),
			Stroke: mix(base, black, 0.5),
			Glow:   withAlpha(base, 0.6),
		}
	}
	return out
}

// StyleFor returns the style of a node type
func StyleFor(t scene.NodeType) Style {
	if t < 0 || int(t) >= len(styles) {
		return styles[scene.TypeUnknown]
	}
	return styles[t]
}

// mix blends a toward b by t in [0,1]
func mix(a, b color.NRGBA, t float64) color.NRGBA {
	f := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{f(a.R, b.R), f(a.G, b.G), f(a.B, b.B), f(a.A, b.A)}
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(clamp01(a)*255 + 0.5)
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
