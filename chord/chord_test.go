package chord

import (
	"testing"

	"github.com/cwbudde/chordharp/notes"
	"github.com/stretchr/testify/assert"
)

func verifyTriads(t *testing.T, roots []int16, wantMods Modifiers, wantMask PitchClassSet) {
	t.Helper()
	for _, r := range roots {
		c := NewTriad(notes.UnkeyedNote(r))
		assert.Equal(t, wantMods, c.Mods(), "root %d", r)
		assert.Equal(t, wantMask, c.Mask(), "root %d", r)
	}
}

func TestMajorTriads(t *testing.T) {
	assert.Equal(t, PitchClassSet(0b000010010001), MajorTri)
	verifyTriads(t, []int16{-17, -12, -7, -5, 0, 5, 7, 12, 17}, ModMajorTri, MajorTri)
}

func TestMinorTriads(t *testing.T) {
	assert.Equal(t, PitchClassSet(0b000010001001), MinorTri)
	verifyTriads(t, []int16{-15, -10, -8, -3, 2, 4, 9, 14}, ModMinorTri, MinorTri)
}

func TestDiminishedTriads(t *testing.T) {
	assert.Equal(t, PitchClassSet(0b000001001001), DiminTri)
	verifyTriads(t, []int16{-13, -1, 11, 23}, ModDiminTri, DiminTri)
}

func TestChromaticRootsDefaultToMajor(t *testing.T) {
	verifyTriads(t, []int16{-11, -9, -6, -4, -2, 1, 3, 6, 8, 10, 13}, ModMajorTri, MajorTri)
}

func TestTriadMembership(t *testing.T) {
	cases := []struct {
		name string
		root notes.UnkeyedNote
		in   []notes.UnkeyedNote
		out  []notes.UnkeyedNote
	}{
		{"major", 0, []notes.UnkeyedNote{0, 4, 7}, []notes.UnkeyedNote{6, 3}},
		{"minor", 2, []notes.UnkeyedNote{2, 5, 9}, []notes.UnkeyedNote{6, 4}},
		{"diminished", 11, []notes.UnkeyedNote{11, 2, 5}, []notes.UnkeyedNote{6, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewTriad(tc.root)
			for _, n := range tc.in {
				assert.True(t, c.Contains(n), "expected %d in chord", n)
			}
			for _, n := range tc.out {
				assert.False(t, c.Contains(n), "expected %d not in chord", n)
			}
		})
	}
}

// Each add-modifier selects the interval its name describes.
func TestModifierIntervals(t *testing.T) {
	cases := []struct {
		name string
		mod  Modifiers
		pc   notes.UnrootedNote
	}{
		{"AddMajor2", ModAddMajor2, 2},
		{"Add4", ModAdd4, 5},
		{"AddMinor6", ModAddMinor6, 8},
		{"AddMajor6", ModAddMajor6, 9},
		{"AddMinor7", ModAddMinor7, 10},
		{"AddMajor7", ModAddMajor7, 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(0, tc.mod)
			assert.Equal(t, RootOnly|1<<tc.pc, c.Mask())
		})
	}
}

func TestSus4(t *testing.T) {
	assert := assert.New(t)
	c := NewTriad(0).WithMods(ModSus4)
	assert.True(c.Contains(5))
	assert.False(c.Contains(4))
	assert.False(c.Contains(3))
	assert.True(c.Contains(7))
}

func TestAddedIntervalsOnMinorRoot(t *testing.T) {
	assert := assert.New(t)
	assert.True(NewTriad(4).WithMods(ModAddMajor7).Contains(15))
	assert.True(NewTriad(4).WithMods(ModAddMajor2).Contains(6))
	assert.True(NewTriad(4).WithMods(ModAddMajor6).Contains(13))
}

func TestMinor3ToMajor(t *testing.T) {
	assert := assert.New(t)
	c := NewTriad(4).WithMods(ModMinor3ToMajor)
	assert.False(c.Contains(7))
	assert.True(c.Contains(8))
}

func TestSwitchMinorMajor(t *testing.T) {
	assert := assert.New(t)

	major := NewTriad(0).WithMods(ModSwitchMinorMajor)
	assert.Equal(MinorTri, major.Mask())

	minor := NewTriad(2).WithMods(ModSwitchMinorMajor)
	assert.Equal(MajorTri, minor.Mask())

	// Diminished becomes major only once the fifth is restored too.
	dim := NewTriad(11).WithMods(ModSwitchMinorMajor)
	assert.Equal(RootOnly|1<<4, dim.Mask())
	dim = dim.WithMods(ModRestorePerfect5)
	assert.Equal(MajorTri, dim.Mask())
}

func TestModifierOrderIsFixed(t *testing.T) {
	// MinorTri resets the mask before Minor3ToMajor runs, whatever order the
	// flags were added in.
	a := New(0, ModMinor3ToMajor).WithMods(ModMinorTri)
	b := New(0, ModMinorTri).WithMods(ModMinor3ToMajor)
	assert.Equal(t, a, b)
	assert.Equal(t, MajorTri, a.Mask())
}

func TestRootAlwaysPresent(t *testing.T) {
	for mods := Modifiers(0); mods < 1<<13; mods++ {
		for root := notes.UnkeyedNote(-13); root <= 13; root++ {
			c := New(root, mods)
			if !c.Contains(root) {
				t.Fatalf("root %d missing for mods %v", root, mods)
			}
			if c.Mask()&^pitchClassMask != 0 {
				t.Fatalf("mask has bits above 11: %v", c.Mask())
			}
		}
	}
}

func TestContainsMatchesMask(t *testing.T) {
	c := NewTriad(9).WithMods(ModAddMinor7 | ModAddMajor2)
	for n := notes.UnkeyedNote(-24); n <= 24; n++ {
		pc := notes.NewUnrootedNote(n.Sub(c.Root()))
		assert.Equal(t, c.Mask()&(1<<pc) != 0, c.Contains(n), "note %d", n)
	}
}

func TestHasRoot(t *testing.T) {
	assert := assert.New(t)
	c := NewTriad(7)
	assert.True(c.HasRoot(-5))
	assert.True(c.HasRoot(19))
	assert.False(c.HasRoot(11))
}

func TestModifiersString(t *testing.T) {
	assert.Equal(t, "Add4|No3", ModSus4.String())
	assert.Equal(t, "0", Modifiers(0).String())
}
