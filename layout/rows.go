package layout

// Row identifies a horizontal band of the touch surface.
type Row uint8

const (
	RowTop Row = iota
	RowMiddle
	RowBottom
)

func (r Row) String() string {
	switch r {
	case RowTop:
		return "top"
	case RowMiddle:
		return "middle"
	default:
		return "bottom"
	}
}

// RowForY partitions a normalized y coordinate (0 at the top) into rows.
func RowForY(yNorm float32) Row {
	switch {
	case yNorm < 0.4:
		return RowTop
	case yNorm < 0.75:
		return RowMiddle
	default:
		return RowBottom
	}
}
