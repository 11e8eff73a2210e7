package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/chordharp/internal/frontend"
	"github.com/cwbudde/chordharp/session"
)

var (
	replayOpts renderOptions
	replayGap  time.Duration
)

func init() {
	replayOpts.register(replayCmd)
	replayCmd.Flags().DurationVar(&replayGap, "gap", 5*time.Millisecond, "virtual time between recorded events")
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay <log.json>",
	Short: "Replay a recorded event log and render it to WAV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		log, err := session.Load(args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		opts := replayOpts
		if log.Width > 0 && !cmd.Flags().Changed("width") {
			opts.width = log.Width
		}
		o := newOffline(s, opts)
		if err := frontend.Replay(log, o, replayGap); err != nil {
			return err
		}

		st := o.Session().State()
		c, ok := st.ActiveChord()
		slog.Info("replayed",
			"id", log.ID,
			"events", len(log.Events),
			"chord", chordLabel(c.String(), ok),
			"transpose", int(st.Transpose()),
			"active_notes", len(st.ActiveNotes()),
		)
		return finishRender(o, opts)
	},
}

func chordLabel(name string, ok bool) string {
	if !ok {
		return "none"
	}
	return name
}
