// Package settings holds the user-facing options of the instrument and
// loads them from a JSON file of optional overrides.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/chordharp/notes"
	"github.com/cwbudde/chordharp/session"
	"github.com/cwbudde/chordharp/synth"
)

// Backend selects where notes are sent.
type Backend uint8

const (
	BackendSynth Backend = iota
	BackendMidi
)

func (b Backend) String() string {
	if b == BackendMidi {
		return "midi"
	}
	return "synth"
}

// Label is the three-letter name shown in the settings panel.
func (b Backend) Label() string {
	if b == BackendMidi {
		return "MID"
	}
	return "SYN"
}

// Cycle returns the next desktop backend.
func (b Backend) Cycle() Backend {
	if b == BackendMidi {
		return BackendSynth
	}
	return BackendMidi
}

// MarshalText encodes the backend as "synth" or "midi".
func (b Backend) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText accepts "synth" or "midi", ignoring case.
func (b *Backend) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "synth":
		*b = BackendSynth
	case "midi":
		*b = BackendMidi
	default:
		return fmt.Errorf("audio_backend must be \"synth\" or \"midi\", got %q", text)
	}
	return nil
}

const (
	DefaultStopDelayMs   = 350
	MaxStopDelayMs       = 10000
	DesktopBaseTranspose = 48
	MobileBaseTranspose  = 36
	maxToneCutoffHz      = 20000
)

// Settings is the full option set.
type Settings struct {
	ShowNoteNames              bool            `json:"show_note_names"`
	PlayOnTap                  bool            `json:"play_on_tap"`
	ShowRomanChords            bool            `json:"show_roman_chords"`
	ShowChordButtons           bool            `json:"show_chord_buttons"`
	A4TuningHz                 int             `json:"a4_tuning_hz"`
	ChordReleaseNoteOffDelayMs int             `json:"chord_release_note_off_delay_ms"`
	AllowImpliedSevenths       bool            `json:"allow_implied_sevenths"`
	AudioBackend               Backend         `json:"audio_backend"`
	MidiPort                   string          `json:"midi_port"`
	MidiBaseTranspose          notes.Transpose `json:"midi_base_transpose"`
	ToneCutoffHz               int             `json:"tone_cutoff_hz"`
}

// Default returns the desktop defaults.
func Default() *Settings {
	return &Settings{
		PlayOnTap:                  true,
		ShowRomanChords:            true,
		ShowChordButtons:           true,
		A4TuningHz:                 synth.DefaultTuningHz,
		ChordReleaseNoteOffDelayMs: DefaultStopDelayMs,
		AllowImpliedSevenths:       true,
		AudioBackend:               BackendSynth,
		MidiBaseTranspose:          DesktopBaseTranspose,
	}
}

// StopDelay is the chord-release note-off delay as a duration.
func (s *Settings) StopDelay() time.Duration {
	return time.Duration(s.ChordReleaseNoteOffDelayMs) * time.Millisecond
}

// SessionConfig returns the options a UiSession needs.
func (s *Settings) SessionConfig() session.Config {
	return session.Config{
		AllowImpliedSevenths: s.AllowImpliedSevenths,
		StopDelay:            s.StopDelay(),
	}
}

// File is the JSON schema of a settings file. Absent fields keep their
// current value.
type File struct {
	ShowNoteNames              *bool    `json:"show_note_names"`
	PlayOnTap                  *bool    `json:"play_on_tap"`
	ShowRomanChords            *bool    `json:"show_roman_chords"`
	ShowChordButtons           *bool    `json:"show_chord_buttons"`
	A4TuningHz                 *int     `json:"a4_tuning_hz"`
	ChordReleaseNoteOffDelayMs *int     `json:"chord_release_note_off_delay_ms"`
	AllowImpliedSevenths       *bool    `json:"allow_implied_sevenths"`
	AudioBackend               *Backend `json:"audio_backend"`
	MidiPort                   *string  `json:"midi_port"`
	MidiBaseTranspose          *int     `json:"midi_base_transpose"`
	ToneCutoffHz               *int     `json:"tone_cutoff_hz"`
}

// LoadJSON reads a settings file and applies it over Default.
func LoadJSON(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := Default()
	if err := ApplyFile(s, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ApplyFile copies the fields present in f onto dst. Tuning is clamped to
// the synthesizer's range; other out-of-range values are errors.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.ShowNoteNames != nil {
		dst.ShowNoteNames = *f.ShowNoteNames
	}
	if f.PlayOnTap != nil {
		dst.PlayOnTap = *f.PlayOnTap
	}
	if f.ShowRomanChords != nil {
		dst.ShowRomanChords = *f.ShowRomanChords
	}
	if f.ShowChordButtons != nil {
		dst.ShowChordButtons = *f.ShowChordButtons
	}
	if f.A4TuningHz != nil {
		dst.A4TuningHz = notes.Clamp(*f.A4TuningHz, synth.MinTuningHz, synth.MaxTuningHz)
	}
	if f.ChordReleaseNoteOffDelayMs != nil {
		if *f.ChordReleaseNoteOffDelayMs < 0 || *f.ChordReleaseNoteOffDelayMs > MaxStopDelayMs {
			return fmt.Errorf("chord_release_note_off_delay_ms must be in [0,%d]", MaxStopDelayMs)
		}
		dst.ChordReleaseNoteOffDelayMs = *f.ChordReleaseNoteOffDelayMs
	}
	if f.AllowImpliedSevenths != nil {
		dst.AllowImpliedSevenths = *f.AllowImpliedSevenths
	}
	if f.AudioBackend != nil {
		dst.AudioBackend = *f.AudioBackend
	}
	if f.MidiPort != nil {
		dst.MidiPort = strings.TrimSpace(*f.MidiPort)
	}
	if f.MidiBaseTranspose != nil {
		if *f.MidiBaseTranspose < 0 || *f.MidiBaseTranspose > 127 {
			return fmt.Errorf("midi_base_transpose must be in [0,127]")
		}
		dst.MidiBaseTranspose = notes.Transpose(*f.MidiBaseTranspose)
	}
	if f.ToneCutoffHz != nil {
		if *f.ToneCutoffHz < 0 || *f.ToneCutoffHz > maxToneCutoffHz {
			return fmt.Errorf("tone_cutoff_hz must be in [0,%d]", maxToneCutoffHz)
		}
		dst.ToneCutoffHz = *f.ToneCutoffHz
	}
	return nil
}
