package input

import (
	"encoding/json"
	"testing"

	"github.com/cwbudde/chordharp/chord"
	"github.com/cwbudde/chordharp/engine"
	"github.com/stretchr/testify/assert"
)

func TestKeyMap(t *testing.T) {
	cases := []struct {
		key  Key
		want engine.KeyEvent
	}{
		{Char('d'), engine.ChordEvent(engine.Pressed, engine.ChordI)},
		{Char('a'), engine.ChordEvent(engine.Pressed, engine.ChordVIIB)},
		{Char('v'), engine.ChordEvent(engine.Pressed, engine.ChordVII)},
		{Control, engine.ChordEvent(engine.Pressed, engine.ChordHeptatonicMajor)},
		{Char('6'), engine.ModifierEvent(engine.Pressed, engine.ModMinor7)},
		{Char('b'), engine.ModifierEvent(engine.Pressed, engine.ModMajor7)},
		{Char('1'), engine.ActionEvent(engine.Pressed, engine.ActionChangeKey)},
		{Tab, engine.ActionEvent(engine.Pressed, engine.ActionPulse)},
	}
	for _, c := range cases {
		got, ok := KeyEventFor(engine.Pressed, c.key)
		if !ok || got != c.want {
			t.Fatalf("key %v: got=%+v want=%+v", c.key, got, c.want)
		}
	}
}

func TestModifierKeysCarryModifiers(t *testing.T) {
	ev, _ := KeyEventFor(engine.Pressed, Char('3'))
	assert.Equal(t, chord.ModSus4, ev.Modifiers)
	ev, _ = KeyEventFor(engine.Released, Char('.'))
	assert.Equal(t, chord.ModNo3, ev.Modifiers)
	assert.Equal(t, engine.Released, ev.State)
}

func TestUnmappedKey(t *testing.T) {
	_, ok := KeyEventFor(engine.Pressed, Char('q'))
	assert.False(t, ok)
}

func TestIVMinorMacroOrder(t *testing.T) {
	assert := assert.New(t)

	pressed := ButtonEvents(engine.Pressed, ButtonIVMinor)
	if assert.Len(pressed, 2) {
		assert.Equal(engine.ChordEvent(engine.Pressed, engine.ChordIV), pressed[0])
		assert.Equal(engine.KindModifier, pressed[1].Kind)
	}

	released := ButtonEvents(engine.Released, ButtonIVMinor)
	if assert.Len(released, 2) {
		assert.Equal(engine.KindModifier, released[0].Kind)
		assert.Equal(engine.KindChord, released[1].Kind)
	}
}

func TestIVMinorPlaysMinorIV(t *testing.T) {
	s := engine.NewAppState(engine.DefaultConfig())
	for _, ev := range ButtonEvents(engine.Pressed, ButtonIVMinor) {
		s.HandleKeyEvent(ev)
	}
	c, _ := s.ActiveChord()
	assert.Equal(t, chord.MinorTri, c.Mask())
	assert.Equal(t, int16(5), int16(c.Root()))
}

func TestButtonMapping(t *testing.T) {
	assert := assert.New(t)
	evs := ButtonEvents(engine.Pressed, ButtonVIIDim)
	assert.Equal([]engine.KeyEvent{engine.ChordEvent(engine.Pressed, engine.ChordVII)}, evs)
	evs = ButtonEvents(engine.Pressed, ButtonAdd7)
	assert.Equal([]engine.KeyEvent{engine.ModifierEvent(engine.Pressed, engine.ModMinor7)}, evs)
	assert.Nil(ButtonEvents(engine.Pressed, Button(200)))
}

func TestButtonFromID(t *testing.T) {
	b, ok := ButtonFromID(14)
	assert.True(t, ok)
	assert.Equal(t, ButtonHept, b)
	_, ok = ButtonFromID(16)
	assert.False(t, ok)
	_, ok = ButtonFromID(-1)
	assert.False(t, ok)
}

func TestTextEncoding(t *testing.T) {
	assert := assert.New(t)
	type rec struct {
		Key    Key    `json:"key"`
		Button Button `json:"button"`
	}
	for _, in := range []rec{{Char('d'), ButtonI}, {Control, ButtonIVMinor}, {Tab, ButtonAdd2}} {
		b, err := json.Marshal(in)
		assert.NoError(err)
		var out rec
		assert.NoError(json.Unmarshal(b, &out))
		assert.Equal(in, out)
	}

	var k Key
	assert.Error(k.UnmarshalText([]byte("ab")))
	var btn Button
	assert.Error(btn.UnmarshalText([]byte("XIII")))
}
