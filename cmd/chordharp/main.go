package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/chordharp/settings"
)

var (
	configPath string
	debug      bool
	backend    string
	midiPort   string
	tuning     int
)

var rootCmd = &cobra.Command{
	Use:   "chordharp",
	Short: "Chord-and-strum instrument",
	Long: `chordharp is a strummed chord instrument. Hold chord keys to pick a
harmony and drag across the strings to play it, through MIDI or the built-in
square-wave synthesizer.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(debug)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "settings JSON file")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&backend, "backend", "", "note output: synth or midi")
	pf.StringVar(&midiPort, "port", "", "MIDI output port name pattern")
	pf.IntVar(&tuning, "tuning", 0, "A4 reference in Hz (430..450)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// loadSettings reads --config, if given, and applies the flag overrides.
func loadSettings(cmd *cobra.Command) (*settings.Settings, error) {
	s := settings.Default()
	if configPath != "" {
		var err error
		if s, err = settings.LoadJSON(configPath); err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
	}

	var f settings.File
	flags := cmd.Flags()
	if flags.Changed("backend") {
		var b settings.Backend
		if err := b.UnmarshalText([]byte(strings.TrimSpace(backend))); err != nil {
			return nil, err
		}
		f.AudioBackend = &b
	}
	if flags.Changed("port") {
		f.MidiPort = &midiPort
	}
	if flags.Changed("tuning") {
		f.A4TuningHz = &tuning
	}
	if err := settings.ApplyFile(s, &f); err != nil {
		return nil, err
	}
	return s, nil
}
