package view

import (
	"github.com/cwbudde/chordharp/input"
	"github.com/cwbudde/chordharp/pixelfont"
)

const (
	ColorButtonHeld   uint32 = 0x555555
	ColorButtonBorder uint32 = 0x444444
)

// BarPercent is the share of the surface height taken by the on-screen
// chord buttons when they are shown.
const BarPercent = 22

var barRows = [2][8]input.Button{
	{input.ButtonVIIB, input.ButtonIV, input.ButtonI, input.ButtonV,
		input.ButtonII, input.ButtonVI, input.ButtonIII, input.ButtonVIIDim},
	{input.ButtonMaj7, input.ButtonNo3, input.ButtonSus4, input.ButtonMinorMajor,
		input.ButtonAdd2, input.ButtonAdd7, input.ButtonHept, input.ButtonIVMinor},
}

var buttonLabels = map[input.Button]string{
	input.ButtonVIIB:       "bVII",
	input.ButtonIV:         "IV",
	input.ButtonI:          "I",
	input.ButtonV:          "V",
	input.ButtonII:         "II",
	input.ButtonVI:         "VI",
	input.ButtonIII:        "III",
	input.ButtonVIIDim:     "VII",
	input.ButtonMaj7:       "M7",
	input.ButtonNo3:        "NO3",
	input.ButtonSus4:       "SUS4",
	input.ButtonMinorMajor: "MIN",
	input.ButtonAdd2:       "ADD2",
	input.ButtonAdd7:       "ADD7",
	input.ButtonHept:       "HEPT",
	input.ButtonIVMinor:    "IVM",
}

// ButtonLabel is the text drawn on a button.
func ButtonLabel(b input.Button) string { return buttonLabels[b] }

// ButtonRect places one on-screen button.
type ButtonRect struct {
	Button input.Button
	Rect   pixelfont.Rect
}

// BarHeight is the pixel height of the button bar for a surface height.
func BarHeight(height int) int { return height * BarPercent / 100 }

// ButtonBar lays the buttons out in two rows across the top of the surface,
// degrees above modifiers.
func ButtonBar(width, height int) []ButtonRect {
	bar := BarHeight(height)
	rowH := bar / len(barRows)
	var out []ButtonRect
	for r, row := range barRows {
		for i, b := range row {
			x0 := width * i / len(row)
			x1 := width * (i + 1) / len(row)
			out = append(out, ButtonRect{
				Button: b,
				Rect:   pixelfont.Rect{X: x0, Y: r * rowH, W: x1 - x0, H: rowH},
			})
		}
	}
	return out
}

// ButtonAt returns the button under (x, y).
func ButtonAt(bar []ButtonRect, x, y float32) (input.Button, bool) {
	for _, br := range bar {
		if br.Rect.Contains(x, y) {
			return br.Button, true
		}
	}
	return 0, false
}

// DrawButtons paints the bar. held reports which buttons are down.
func DrawButtons(f *pixelfont.Frame, bar []ButtonRect, held func(input.Button) bool) {
	for _, br := range bar {
		fill := ColorButton
		if held != nil && held(br.Button) {
			fill = ColorButtonHeld
		}
		f.FillRect(br.Rect, fill)
		f.StrokeRect(br.Rect, ColorButtonBorder)

		label := ButtonLabel(br.Button)
		tw := pixelfont.TextWidth(label, TextNum, TextDen)
		th := pixelfont.GlyphH * TextNum / TextDen
		x := br.Rect.X + (br.Rect.W-tw)/2
		y := br.Rect.Y + (br.Rect.H-th)/2
		f.DrawText(x, y, label, ColorText, TextNum, TextDen)
	}
}
