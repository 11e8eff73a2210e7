// Package view draws the instrument into a software frame buffer: one
// vertical line per string, optional note names and chord label, and the
// desktop settings overlay.
package view

import (
	"math"

	"github.com/cwbudde/chordharp/chord"
	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/pixelfont"
	"github.com/cwbudde/chordharp/settings"
)

const (
	ColorBackground uint32 = 0x000000
	ColorRoot       uint32 = 0xFF0000
	ColorMember     uint32 = 0xFFFFFF
	ColorInactive   uint32 = 0x333333
	ColorButton     uint32 = 0x222222
	ColorPanel      uint32 = 0x111111
	ColorBorder     uint32 = 0x333333
	ColorCheckbox   uint32 = 0x777777
	ColorText       uint32 = 0xFFFFFF
)

// Text is drawn at 13/5 of the font's pixel size.
const (
	TextNum = 13
	TextDen = 5
)

const (
	labelY = 2
	romanX = 4
	romanY = labelY + pixelfont.GlyphH*TextNum/TextDen + 6
)

// Scene is what the strings show.
type Scene struct {
	Chord     chord.Chord
	HasChord  bool
	Transpose notes.Transpose
	Positions []float32
}

// SceneOf captures the engine state for drawing.
func SceneOf(st *engine.AppState, positions []float32) Scene {
	c, ok := st.ActiveChord()
	return Scene{Chord: c, HasChord: ok, Transpose: st.Transpose(), Positions: positions}
}

// Overlay is the settings-panel state.
type Overlay struct {
	Open            bool
	PlayOnTap       bool
	ShowNoteNames   bool
	ShowRomanChords bool
	Backend         settings.Backend
}

// OverlayOf reads the displayed options from s.
func OverlayOf(s *settings.Settings, open bool) Overlay {
	return Overlay{
		Open:            open,
		PlayOnTap:       s.PlayOnTap,
		ShowNoteNames:   s.ShowNoteNames,
		ShowRomanChords: s.ShowRomanChords,
		Backend:         s.AudioBackend,
	}
}

type column struct {
	prio  uint8
	color uint32
	pc    int16
}

// columns resolves which string owns each pixel column. Roots beat chord
// members, which beat inactive strings. Chromatic strings outside the
// chord are not drawn at all.
func columns(sc Scene, width int) []column {
	cols := make([]column, width)
	keyPC := sc.Transpose.WrapToOctave()
	for i, x := range sc.Positions {
		fx := math.Round(float64(x))
		if !(fx >= 0 && fx < float64(width)) {
			continue
		}
		xi := int(fx)
		n := notes.UnkeyedNote(i)
		member := sc.HasChord && sc.Chord.Contains(n)
		if notes.IsBlackKey(n) && !member {
			continue
		}

		c := column{prio: 1, color: ColorInactive}
		switch {
		case member && sc.Chord.HasRoot(n):
			c = column{prio: 3, color: ColorRoot}
		case member:
			c = column{prio: 2, color: ColorMember}
		}
		c.pc = n.WrapToOctave() + keyPC
		if c.prio > cols[xi].prio {
			cols[xi] = c
		}
	}
	return cols
}

// Draw renders the scene and overlay into f.
func Draw(f *pixelfont.Frame, sc Scene, ov Overlay) {
	f.Fill(ColorBackground)
	cols := columns(sc, f.W)

	for x, c := range cols {
		if c.prio > 0 {
			f.VLine(x, 0, f.H, c.color)
		}
	}

	if ov.ShowNoteNames {
		keyPC := sc.Transpose.WrapToOctave()
		for x, c := range cols {
			if c.prio < 2 {
				continue
			}
			f.DrawText(x+4, labelY, notes.PitchClassLabel(c.pc, keyPC), c.color, TextNum, TextDen)
		}
	}

	if ov.ShowRomanChords && sc.HasChord {
		if b, ok := engine.DegreeOf(sc.Chord); ok {
			f.DrawText(romanX, romanY, b.String(), ColorText, TextNum, TextDen)
		}
	}

	drawOverlay(f, ov)
}

func drawOverlay(f *pixelfont.Frame, ov Overlay) {
	l := LayoutFor(f.W)
	f.FillRect(l.Gear, ColorButton)
	f.DrawText(l.Gear.X+4, l.Gear.Y+4, "SET", ColorText, TextNum, TextDen)
	if !ov.Open {
		return
	}

	f.FillRect(l.Panel, ColorPanel)
	f.StrokeRect(l.Panel, ColorBorder)
	drawCheckbox(f, l.Rows[RowPlayOnTap], ov.PlayOnTap, "TAP")
	drawCheckbox(f, l.Rows[RowNoteNames], ov.ShowNoteNames, "LBL")
	drawCheckbox(f, l.Rows[RowRomanChords], ov.ShowRomanChords, "ROM")

	r := l.Rows[RowBackend]
	f.DrawText(r.X+6, r.Y+3, "AUD", ColorText, TextNum, TextDen)
	f.DrawText(r.X+64, r.Y+3, ov.Backend.Label(), ColorText, TextNum, TextDen)
}

func drawCheckbox(f *pixelfont.Frame, row pixelfont.Rect, checked bool, label string) {
	box := pixelfont.Rect{X: row.X + 6, Y: row.Y + 5, W: 10, H: 10}
	f.FillRect(box, ColorBackground)
	f.StrokeRect(box, ColorCheckbox)
	if checked {
		f.FillRect(pixelfont.Rect{X: box.X + 2, Y: box.Y + 2, W: box.W - 4, H: box.H - 4}, ColorText)
	}
	f.DrawText(row.X+22, row.Y+3, label, ColorText, TextNum, TextDen)
}
