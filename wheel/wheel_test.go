package wheel

import (
	"testing"

	"github.com/cwbudde/chordharp/chord"
	"github.com/cwbudde/chordharp/engine"
	"github.com/stretchr/testify/assert"
)

func TestMajorDegreePresets(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(chord.ModAddMinor7, ModifiersFor(engine.ChordIV, N))
	assert.Equal(chord.ModAddMajor7, ModifiersFor(engine.ChordIV, NW))
	assert.Equal(chord.ModSus4, ModifiersFor(engine.ChordIV, W))
	assert.Equal(chord.ModSwitchMinorMajor|chord.ModAddMinor7|chord.ModAddMajor2, ModifiersFor(engine.ChordI, SE))
}

func TestMinorDegreePresets(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(chord.ModAddMinor7, ModifiersFor(engine.ChordIII, S))
	assert.Equal(chord.ModSwitchMinorMajor|chord.ModAddMinor7, ModifiersFor(engine.ChordIII, N))
	assert.Equal(chord.ModAddMajor2, ModifiersFor(engine.ChordVII, E))
}

func TestHeptatonicUsesMinorTable(t *testing.T) {
	assert.Equal(t, ModifiersFor(engine.ChordII, NE), ModifiersFor(engine.ChordHeptatonicMajor, NE))
}

func TestFromInt(t *testing.T) {
	for i := 0; i < 8; i++ {
		d, ok := FromInt(i)
		if !ok || int(d) != i {
			t.Fatalf("FromInt(%d): got=%v,%v", i, d, ok)
		}
	}
	for _, i := range []int{-1, 8, 100} {
		if _, ok := FromInt(i); ok {
			t.Fatalf("FromInt(%d) accepted", i)
		}
	}
	assert.Equal(t, chord.Modifiers(0), ModifiersFor(engine.ChordI, Direction(9)))
}

func TestFromVector(t *testing.T) {
	cases := []struct {
		dx, dy float32
		want   Direction
	}{
		{0, -10, N},
		{10, -10, NE},
		{10, 0, E},
		{10, 10, SE},
		{0, 10, S},
		{-10, 10, SW},
		{-10, 0, W},
		{-10, -10, NW},
		{-1, -30, N},
	}
	for _, c := range cases {
		got, ok := FromVector(c.dx, c.dy, 4)
		if !ok || got != c.want {
			t.Fatalf("FromVector(%v,%v): got=%v want=%v", c.dx, c.dy, got, c.want)
		}
	}
	if _, ok := FromVector(1, 1, 4); ok {
		t.Fatal("short swipe should have no direction")
	}
}
