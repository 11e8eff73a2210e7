package view

import (
	"github.com/cwbudde/chordharp/pixelfont"
	"github.com/cwbudde/chordharp/settings"
)

// Panel rows, top to bottom.
const (
	RowPlayOnTap = iota
	RowNoteNames
	RowRomanChords
	RowBackend

	numRows
)

const rowHeight = 20

// Layout is the fixed-size settings geometry for a window width.
type Layout struct {
	Gear  pixelfont.Rect
	Panel pixelfont.Rect
	Rows  [numRows]pixelfont.Rect
}

// LayoutFor anchors the gear and panel to the top-right corner.
func LayoutFor(width int) Layout {
	l := Layout{
		Gear:  pixelfont.Rect{X: width - 44, Y: 8, W: 36, H: 18},
		Panel: pixelfont.Rect{X: width - 170, Y: 30, W: 162, H: numRows * rowHeight},
	}
	for i := range l.Rows {
		l.Rows[i] = pixelfont.Rect{X: l.Panel.X, Y: l.Panel.Y + i*rowHeight, W: l.Panel.W, H: rowHeight}
	}
	return l
}

// Action is the result of a click on the overlay.
type Action uint8

const (
	ActionNone Action = iota
	ActionToggleSettings
	ActionCloseSettings
	ActionTogglePlayOnTap
	ActionToggleNoteNames
	ActionToggleRomanChords
	ActionCycleBackend
)

// HitTest classifies a click at (x, y). consumed is false when the click
// should still reach the strings; that is the case for clicks outside an
// open panel, which also close it.
func HitTest(width int, open bool, x, y float32) (a Action, consumed bool) {
	l := LayoutFor(width)
	if l.Gear.Contains(x, y) {
		return ActionToggleSettings, true
	}
	if !open {
		return ActionNone, false
	}
	if !l.Panel.Contains(x, y) {
		return ActionCloseSettings, false
	}
	for i, r := range l.Rows {
		if r.Contains(x, y) {
			return rowActions[i], true
		}
	}
	return ActionNone, true
}

var rowActions = [numRows]Action{
	ActionTogglePlayOnTap,
	ActionToggleNoteNames,
	ActionToggleRomanChords,
	ActionCycleBackend,
}

// Apply performs a on s and returns the new panel visibility.
func (a Action) Apply(s *settings.Settings, open bool) bool {
	switch a {
	case ActionToggleSettings:
		return !open
	case ActionCloseSettings:
		return false
	case ActionTogglePlayOnTap:
		s.PlayOnTap = !s.PlayOnTap
	case ActionToggleNoteNames:
		s.ShowNoteNames = !s.ShowNoteNames
	case ActionToggleRomanChords:
		s.ShowRomanChords = !s.ShowRomanChords
	case ActionCycleBackend:
		s.AudioBackend = s.AudioBackend.Cycle()
	}
	return open
}
