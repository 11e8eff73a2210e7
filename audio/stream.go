package audio

import (
	"sync"

	"github.com/cwbudde/chordharp/synth"
)

// Stream is the callback frontend: a device pulls interleaved 16-bit
// little-endian PCM from it through Read. Each call drains the message
// queue, then renders exactly the frames that fit in p.
type Stream struct {
	mu       sync.Mutex
	rx       *Receiver
	synth    *synth.Synth
	channels int
	buf      []int16
}

// NewStream takes ownership of rx.
func NewStream(rx *Receiver, s *synth.Synth, channels int) *Stream {
	if channels < 1 {
		panic("audio: channels must be >= 1")
	}
	return &Stream{rx: rx, synth: s, channels: channels}
}

// Synth returns the stream's synthesizer. Only the audio thread may use it
// while the stream is playing.
func (s *Stream) Synth() *synth.Synth { return s.synth }

// Drain applies pending messages without rendering and returns how many
// were applied.
func (s *Stream) Drain() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rx.Drain(s.synth)
}

// Read implements io.Reader. Trailing bytes that do not fill a frame are
// left untouched.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frameBytes := 2 * s.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	n := frames * s.channels
	if cap(s.buf) < n {
		s.buf = make([]int16, n)
	}
	buf := s.buf[:n]

	s.rx.Drain(s.synth)
	s.synth.RenderI16(buf, s.channels)

	for i, v := range buf {
		p[2*i] = byte(v)
		p[2*i+1] = byte(uint16(v) >> 8)
	}
	return n * 2, nil
}

// Polled is the fallback frontend for hosts that ask the UI thread for
// samples. The receiver sits behind a mutex so it can be swapped while the
// host is idle.
type Polled struct {
	mu    sync.Mutex
	rx    *Receiver
	synth *synth.Synth
}

// NewPolled returns a polled renderer reading rx.
func NewPolled(rx *Receiver, s *synth.Synth) *Polled {
	return &Polled{rx: rx, synth: s}
}

// SetReceiver replaces the receiver, for use after the channel was reset.
func (p *Polled) SetReceiver(rx *Receiver) {
	p.mu.Lock()
	p.rx = rx
	p.mu.Unlock()
}

// Drain applies pending messages without rendering.
func (p *Polled) Drain() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rx == nil {
		return 0
	}
	return p.rx.Drain(p.synth)
}

// FillI16 drains pending messages and renders into out.
func (p *Polled) FillI16(out []int16, channels int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rx != nil {
		p.rx.Drain(p.synth)
	}
	p.synth.RenderI16(out, channels)
}

// FillF32 drains pending messages and renders into out.
func (p *Polled) FillF32(out []float32, channels int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rx != nil {
		p.rx.Drain(p.synth)
	}
	p.synth.RenderF32(out, channels)
}
