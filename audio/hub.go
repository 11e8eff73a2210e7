package audio

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/cwbudde/chordharp/synth"
)

// Player is a started device stream. oto.Player satisfies it.
type Player interface {
	Play()
	Close() error
	Err() error
}

// OpenFunc binds r to a device producing 16-bit interleaved PCM at the
// given rate and channel count.
type OpenFunc func(r io.Reader, sampleRate, channels int) (Player, error)

var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

// OpenOto opens the default device through oto. oto allows one context per
// process, so later calls must ask for the same format.
func OpenOto(r io.Reader, sampleRate, channels int) (Player, error) {
	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx == nil {
		ctx, ready, err := oto.NewContext(sampleRate, channels, oto.FormatSignedInt16LE)
		if err != nil {
			return nil, err
		}
		<-ready
		otoCtx, otoRate, otoChannels = ctx, sampleRate, channels
	} else if sampleRate != otoRate || channels != otoChannels {
		return nil, fmt.Errorf("device already open at %d Hz x%d", otoRate, otoChannels)
	}
	return otoCtx.NewPlayer(r), nil
}

// Hub owns the message channel and whichever frontend currently drains it.
// Frontends talk to the synthesizer only through Sender.
type Hub struct {
	mu       sync.Mutex
	tx       *Sender
	rx       *Receiver
	open     OpenFunc
	player   Player
	stream   *Stream
	polled   *Polled
	rate     int
	channels int
	tuning   int
	log      *slog.Logger
}

var defaultHub = sync.OnceValue(func() *Hub { return NewHub(OpenOto, nil) })

// Default returns the process-wide hub bound to oto.
func Default() *Hub { return defaultHub() }

// NewHub returns a hub with a fresh channel. log may be nil.
func NewHub(open OpenFunc, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	tx, rx := NewChannel(DefaultQueueSize)
	return &Hub{tx: tx, rx: rx, open: open, tuning: synth.DefaultTuningHz, log: log}
}

// Sender returns the current sender. It changes after Reset.
func (h *Hub) Sender() *Sender {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tx
}

// SetTuning records the A4 reference used for new synthesizers and sends it
// to the running one.
func (h *Hub) SetTuning(a4Hz int) error {
	h.mu.Lock()
	h.tuning = a4Hz
	tx := h.tx
	h.mu.Unlock()
	return tx.SetTuning(a4Hz)
}

// Start opens the callback frontend on a device. The stream takes the
// receiver; a polled frontend, if any, is detached.
func (h *Hub) Start(sampleRate, channels int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	h.rate, h.channels = sampleRate, channels
	h.polled = nil
	return h.startLocked()
}

func (h *Hub) startLocked() error {
	st := NewStream(h.rx, synth.WithTuning(h.rate, h.tuning), h.channels)
	p, err := h.open(st, h.rate, h.channels)
	if err != nil {
		h.log.Error("audio: open failed", "rate", h.rate, "channels", h.channels, "err", err)
		return fmt.Errorf("%w: %v", ErrNoOutput, err)
	}
	p.Play()
	h.player, h.stream = p, st
	h.log.Info("audio: stream started", "rate", h.rate, "channels", h.channels)
	return nil
}

// Revive rebuilds the device stream if the host reported it dead. Call it
// lazily before dispatching effects; it is cheap when the stream is fine.
func (h *Hub) Revive() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.player == nil {
		return nil
	}
	err := h.player.Err()
	if err == nil {
		return nil
	}
	h.log.Warn("audio: stream died", "err", err)
	h.stopLocked()
	if err := h.startLocked(); err != nil {
		return err
	}
	h.log.Info("audio: stream rebuilt")
	return nil
}

// UsePolled switches to the polled frontend and returns it. The device
// stream, if running, is closed first.
func (h *Hub) UsePolled(sampleRate int) *Polled {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	h.rate = sampleRate
	h.polled = NewPolled(h.rx, synth.WithTuning(sampleRate, h.tuning))
	return h.polled
}

// Reset replaces sender and receiver atomically. The old sender is closed,
// a polled frontend is moved to the new receiver and a running stream is
// rebuilt around it.
func (h *Hub) Reset() (*Sender, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tx.Close()
	h.tx, h.rx = NewChannel(DefaultQueueSize)
	if h.polled != nil {
		h.polled.SetReceiver(h.rx)
	}
	if h.player == nil {
		return h.tx, nil
	}
	h.stopLocked()
	return h.tx, h.startLocked()
}

// Close drains the queue one last time and stops the device stream. Send
// note-offs for active notes before calling it.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.stream != nil:
		h.stream.Drain()
	case h.polled != nil:
		h.polled.Drain()
	}
	return h.stopLocked()
}

func (h *Hub) stopLocked() error {
	if h.player == nil {
		return nil
	}
	err := h.player.Close()
	h.player, h.stream = nil, nil
	if err != nil {
		return fmt.Errorf("audio: close: %w", err)
	}
	return nil
}
