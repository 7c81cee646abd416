package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// LabelSize is the label font size in points at 72 DPI
	LabelSize = 11.0

	ownerLabelRunes = 10
	nodeLabelRunes  = 8
	ellipsis        = "…"
)

func newFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Truncate shortens label to max runes, marking the cut with an ellipsis
func Truncate(label string, max int) string {
	runes := []rune(label)
	if len(runes) <= max {
		return label
	}
	return string(runes[:max]) + ellipsis
}

// LabelFor returns the text drawn under a node
func LabelFor(label string, focal bool) string {
	if focal {
		return Truncate(label, ownerLabelRunes)
	}
	return Truncate(label, nodeLabelRunes)
}

// drawLabel centres text horizontally on x with its baseline at y, over a
// 1px drop shadow
func drawLabel(dst *image.RGBA, face font.Face, text string, x, y float64, col color.NRGBA) {
	width := font.MeasureString(face, text)
	dot := fixed.Point26_6{
		X: fixed.Int26_6(x*64) - width/2,
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{Dst: dst, Src: uniform(withAlpha(black, 0.7)), Face: face}
	d.Dot = dot.Add(fixed.P(1, 1))
	d.DrawString(text)

	d.Src = uniform(col)
	d.Dot = dot
	d.DrawString(text)
}
