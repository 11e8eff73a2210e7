package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cwbudde/chordharp/engine"
	"github.com/google/uuid"
)

// ErrUnknownEvent is returned when a stored event has no recognised input.
var ErrUnknownEvent = errors.New("session: unknown event")

// UiEventLog is a recorded stream of UI events. Replaying it into a fresh
// session reproduces the same chord, key and sounding notes.
type UiEventLog struct {
	ID      uuid.UUID `json:"id"`
	Created time.Time `json:"created"`
	// Width is the surface width the events were recorded against.
	Width  float32   `json:"width,omitempty"`
	Events []UiEvent `json:"events"`
}

// NewLog starts an empty log with a fresh id.
func NewLog(width float32) *UiEventLog {
	return &UiEventLog{
		ID:      uuid.New(),
		Created: time.Now().UTC(),
		Width:   width,
	}
}

// Record appends an event.
func (l *UiEventLog) Record(ev UiEvent) {
	l.Events = append(l.Events, ev)
}

// Replay feeds every event into s and returns the merged effects.
func (l *UiEventLog) Replay(s *UiSession, positions []float32) engine.Effects {
	var effects engine.Effects
	for _, ev := range l.Events {
		effects.Merge(s.Handle(ev, positions).Effects)
	}
	return effects
}

// ReplayEach feeds every event into s and calls fn with each result.
func (l *UiEventLog) ReplayEach(s *UiSession, positions []float32, fn func(i int, r Result)) {
	for i, ev := range l.Events {
		r := s.Handle(ev, positions)
		if fn != nil {
			fn(i, r)
		}
	}
}

// Encode writes the log as indented JSON.
func (l *UiEventLog) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// Decode reads a log written by Encode.
func Decode(r io.Reader) (*UiEventLog, error) {
	var l UiEventLog
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode event log: %w", err)
	}
	for i, ev := range l.Events {
		if !ev.valid() {
			return nil, fmt.Errorf("event %d: %w", i, ErrUnknownEvent)
		}
	}
	return &l, nil
}

// Save writes the log to path.
func (l *UiEventLog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := l.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write event log: %w", err)
	}
	return f.Close()
}

// Load reads a log from path.
func Load(path string) (*UiEventLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
