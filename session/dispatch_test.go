package session

import (
	"errors"
	"testing"

	"github.com/cwbudde/chordharp/engine"
	"github.com/cwbudde/chordharp/notes"
)

func TestDispatchStopsBeforePlays(t *testing.T) {
	positions := linearPositions(12)
	s := New()
	s.Handle(PlayOnTapEvent(false), positions)
	s.Handle(key(engine.Pressed, 'd'), positions)
	s.Handle(down(1, -1), positions)
	s.Handle(move(1, 0), positions)
	s.Handle(move(1, -1), positions)

	res := s.Handle(move(1, 0), positions)
	sink := &recordingSink{}
	if err := Dispatch(res.Effects, sink, 48); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []sinkCall{{"stop", 48, 0}, {"play", 48, 110}}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls: got=%v want=%v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Fatalf("calls: got=%v want=%v", sink.calls, want)
		}
	}
}

func TestDispatchMicroAndSkipsOutOfRange(t *testing.T) {
	sink := &recordingSink{}
	e := engine.Effects{
		StopNotes:    []notes.UnmidiNote{-60, 10},
		PlayNotes:    []engine.NoteOn{{Note: 100, Volume: 70}, {Note: 79, Volume: 70}},
		DampedStrums: 1,
	}
	if err := Dispatch(e, sink, 48); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := []sinkCall{{"stop", 58, 0}, {"play", 127, 70}, {"micro", 0, 0}}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls: got=%v want=%v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Fatalf("calls: got=%v want=%v", sink.calls, want)
		}
	}
}

type failingSink struct{ recordingSink }

var errSink = errors.New("sink down")

func (f *failingSink) StopNote(notes.MidiNote) error { return errSink }

func TestDispatchJoinsErrors(t *testing.T) {
	sink := &failingSink{}
	e := engine.Effects{
		StopNotes: []notes.UnmidiNote{1, 2},
		PlayNotes: []engine.NoteOn{{Note: 3, Volume: 70}},
	}
	err := Dispatch(e, sink, 0)
	if !errors.Is(err, errSink) {
		t.Fatalf("error: got=%v want=%v", err, errSink)
	}
	if len(sink.calls) != 1 || sink.calls[0].op != "play" {
		t.Fatalf("plays still sent: got=%v", sink.calls)
	}
}

func TestDispatchNilSink(t *testing.T) {
	if err := Dispatch(engine.Effects{StopNotes: []notes.UnmidiNote{1}}, nil, 0); err != nil {
		t.Fatalf("nil sink: %v", err)
	}
}
