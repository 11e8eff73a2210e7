package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/chordharp/internal/frontend"
	"github.com/cwbudde/chordharp/internal/wavio"
	"github.com/cwbudde/chordharp/session"
	"github.com/cwbudde/chordharp/settings"
)

const defaultWidth = 1280

type renderOptions struct {
	out        string
	sampleRate int
	outRate    int
	channels   int
	width      float32
	tail       time.Duration
	compare    string
}

func (o *renderOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.out, "out", "o", "chordharp.wav", "output WAV path")
	f.IntVar(&o.sampleRate, "sample-rate", 48000, "synthesis sample rate")
	f.IntVar(&o.outRate, "output-rate", 0, "resample the file to this rate (0 keeps the synthesis rate)")
	f.IntVar(&o.channels, "channels", 2, "output channels")
	f.Float32Var(&o.width, "width", defaultWidth, "virtual surface width in pixels")
	f.DurationVar(&o.tail, "tail", time.Second, "silence rendered after the last event")
	f.StringVar(&o.compare, "compare", "", "reference WAV to diff the output against")
}

var (
	renderOpts   renderOptions
	renderScript string
	renderLog    string
)

func init() {
	renderOpts.register(renderCmd)
	renderCmd.Flags().StringVar(&renderScript, "script", "", "script file (default: a I-IV-V-I progression)")
	renderCmd.Flags().StringVar(&renderLog, "save-log", "", "also save the generated events as an event log")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a scripted performance to WAV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		var src io.Reader = strings.NewReader(frontend.DefaultScript)
		if renderScript != "" {
			f, err := os.Open(renderScript)
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}
		steps, err := frontend.ParseScript(src)
		if err != nil {
			return fmt.Errorf("script: %w", err)
		}

		o := newOffline(s, renderOpts)
		var log *session.UiEventLog
		if renderLog != "" {
			log = session.NewLog(renderOpts.width)
			o.Record(log)
		}
		if err := frontend.Run(steps, o); err != nil {
			return fmt.Errorf("script: %w", err)
		}
		if log != nil {
			if err := log.Save(renderLog); err != nil {
				return err
			}
			slog.Info("event log saved", "path", renderLog, "events", len(log.Events), "id", log.ID)
		}
		return finishRender(o, renderOpts)
	},
}

func newOffline(s *settings.Settings, opts renderOptions) *frontend.Offline {
	return frontend.NewOffline(frontend.OfflineConfig{
		SampleRate: opts.sampleRate,
		Channels:   opts.channels,
		Width:      opts.width,
		Settings:   s,
		Log:        slog.Default(),
	})
}

func finishRender(o *frontend.Offline, opts renderOptions) error {
	samples, err := o.Finish(opts.tail)
	if err != nil {
		return err
	}
	rate := opts.sampleRate
	if opts.outRate > 0 && opts.outRate != rate {
		if samples, err = wavio.Resample(samples, opts.channels, rate, opts.outRate); err != nil {
			return fmt.Errorf("resample: %w", err)
		}
		rate = opts.outRate
	}
	if err := wavio.WriteWAV(opts.out, samples, rate, opts.channels); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	peak, rms := wavio.Stats(samples)
	slog.Info("rendered",
		"path", opts.out,
		"seconds", float64(len(samples)/opts.channels)/float64(rate),
		"peak", peak,
		"rms", rms,
	)
	if opts.compare != "" {
		maxDiff, rmsDiff, err := wavio.CompareFile(opts.compare, samples, rate, opts.channels)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		slog.Info("compared", "reference", opts.compare, "max_diff", maxDiff, "rms_diff", rmsDiff)
	}
	return nil
}
