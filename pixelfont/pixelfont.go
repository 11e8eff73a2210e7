// Package pixelfont rasterizes a tiny 5x7 bitmap font and a few primitives
// into a 0x00RRGGBB frame buffer.
package pixelfont

const (
	GlyphW = 5
	GlyphH = 7
)

// Rows are top to bottom; bit 4 is the leftmost column.
var glyphs = map[rune][GlyphH]uint8{
	'A': {0b01110, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'B': {0b11110, 0b10001, 0b10001, 0b11110, 0b10001, 0b10001, 0b11110},
	'C': {0b01110, 0b10001, 0b10000, 0b10000, 0b10000, 0b10001, 0b01110},
	'D': {0b11110, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b11110},
	'E': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b11111},
	'F': {0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b10000},
	'G': {0b01110, 0b10001, 0b10000, 0b10111, 0b10001, 0b10001, 0b01110},
	'H': {0b10001, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001},
	'I': {0b01110, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110},
	'L': {0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b11111},
	'M': {0b10001, 0b11011, 0b10101, 0b10101, 0b10001, 0b10001, 0b10001},
	'N': {0b10001, 0b11001, 0b10101, 0b10011, 0b10001, 0b10001, 0b10001},
	'O': {0b01110, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'P': {0b11110, 0b10001, 0b10001, 0b11110, 0b10000, 0b10000, 0b10000},
	'R': {0b11110, 0b10001, 0b10001, 0b11110, 0b10100, 0b10010, 0b10001},
	'S': {0b01111, 0b10000, 0b10000, 0b01110, 0b00001, 0b00001, 0b11110},
	'T': {0b11111, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100},
	'U': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110},
	'V': {0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01010, 0b00100},
	'Y': {0b10001, 0b10001, 0b01010, 0b00100, 0b00100, 0b00100, 0b00100},
	'#': {0b01010, 0b11111, 0b01010, 0b01010, 0b11111, 0b01010, 0b01010},
	'b': {0b10000, 0b10000, 0b11110, 0b10001, 0b10001, 0b10001, 0b11110},
	'2': {0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b01000, 0b11111},
	'3': {0b11110, 0b00001, 0b00001, 0b01110, 0b00001, 0b00001, 0b11110},
	'4': {0b00010, 0b00110, 0b01010, 0b10010, 0b11111, 0b00010, 0b00010},
	'7': {0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b01000, 0b01000},
}

// Glyph returns the bitmap for r. Unknown runes, space included, are blank.
func Glyph(r rune) [GlyphH]uint8 {
	return glyphs[r]
}

// Frame is a row-major 0x00RRGGBB pixel buffer.
type Frame struct {
	Pix []uint32
	W   int
	H   int
}

// NewFrame allocates a black w x h frame.
func NewFrame(w, h int) *Frame {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Frame{Pix: make([]uint32, w*h), W: w, H: h}
}

// Resize reallocates the frame when its size changed.
func (f *Frame) Resize(w, h int) {
	if w == f.W && h == f.H {
		return
	}
	*f = *NewFrame(w, h)
}

// At returns the pixel at (x, y), or 0 outside the frame.
func (f *Frame) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return 0
	}
	return f.Pix[y*f.W+x]
}

// Set writes one pixel; coordinates outside the frame are ignored.
func (f *Frame) Set(x, y int, c uint32) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return
	}
	f.Pix[y*f.W+x] = c
}

// Fill paints the whole frame.
func (f *Frame) Fill(c uint32) {
	for i := range f.Pix {
		f.Pix[i] = c
	}
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the rounded point lies inside r.
func (r Rect) Contains(x, y float32) bool {
	xi, yi := roundI(x), roundI(y)
	return xi >= r.X && xi < r.X+r.W && yi >= r.Y && yi < r.Y+r.H
}

func roundI(v float32) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// FillRect paints r, clipped to the frame.
func (f *Frame) FillRect(r Rect, c uint32) {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.W, f.W), min(r.Y+r.H, f.H)
	for y := y0; y < y1; y++ {
		row := f.Pix[y*f.W : (y+1)*f.W]
		for x := x0; x < x1; x++ {
			row[x] = c
		}
	}
}

// StrokeRect draws a one pixel outline of r.
func (f *Frame) StrokeRect(r Rect, c uint32) {
	f.FillRect(Rect{r.X, r.Y, r.W, 1}, c)
	f.FillRect(Rect{r.X, r.Y + r.H - 1, r.W, 1}, c)
	f.FillRect(Rect{r.X, r.Y, 1, r.H}, c)
	f.FillRect(Rect{r.X + r.W - 1, r.Y, 1, r.H}, c)
}

// VLine draws column x from y0 up to but not including y1.
func (f *Frame) VLine(x, y0, y1 int, c uint32) {
	f.FillRect(Rect{x, y0, 1, y1 - y0}, c)
}

// TextWidth is the advance of text at scale num/den.
func TextWidth(text string, num, den int) int {
	n := 0
	for range text {
		n++
	}
	return n * advance(num, den)
}

func advance(num, den int) int {
	return GlyphW*num/den + max(num/den, 1)
}

// DrawText renders text with its top-left corner at (x, y), each font
// pixel scaled by num/den. Pixels outside the frame are clipped.
func (f *Frame) DrawText(x, y int, text string, c uint32, num, den int) {
	if den <= 0 || num <= 0 {
		return
	}
	scale := func(u int) int { return u * num / den }
	for _, r := range text {
		g := glyphs[r]
		for row, bits := range g {
			if bits == 0 {
				continue
			}
			y0, y1 := y+scale(row), y+scale(row+1)
			for col := 0; col < GlyphW; col++ {
				if bits&(1<<(GlyphW-1-col)) == 0 {
					continue
				}
				x0, x1 := x+scale(col), x+scale(col+1)
				f.FillRect(Rect{x0, y0, x1 - x0, y1 - y0}, c)
			}
		}
		x += advance(num, den)
	}
}

// RGBA converts the frame to 8-bit RGBA bytes, reusing dst when it is large
// enough. With flipY the bottom row comes first, as glDrawPixels expects.
func (f *Frame) RGBA(dst []byte, flipY bool) []byte {
	n := 4 * f.W * f.H
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for y := 0; y < f.H; y++ {
		src := f.Pix[y*f.W : (y+1)*f.W]
		row := y
		if flipY {
			row = f.H - 1 - y
		}
		out := dst[4*row*f.W : 4*(row+1)*f.W]
		for x, c := range src {
			out[4*x] = byte(c >> 16)
			out[4*x+1] = byte(c >> 8)
			out[4*x+2] = byte(c)
			out[4*x+3] = 0xFF
		}
	}
	return dst
}
