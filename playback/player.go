// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/aud3d/mixer"
)

// Player drives a mixer device from the system audio output. The oto
// playback goroutine pulls rendered bytes through deviceReader, so the
// device's mix thread is whatever thread oto reads on.
type Player struct {
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	started bool
	closed  bool
}

// deviceReader adapts mixer.Device to the io.Reader oto consumes.
type deviceReader struct {
	dev *mixer.Device
}

func (r *deviceReader) Read(p []byte) (int, error) {
	frameBytes := r.dev.FrameBytes()
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	n := frames * frameBytes
	if err := r.dev.Mix(p[:n], frames); err != nil {
		// A disconnected device keeps the stream alive with silence;
		// returning an error here would tear down the oto player.
		for i := range p[:n] {
			p[i] = 0
		}
	}

	return n, nil
}

func otoFormat(s mixer.SampleType) (oto.Format, error) {
	switch s {
	case mixer.SampleFloat32:
		return oto.FormatFloat32LE, nil
	case mixer.SampleInt16:
		return oto.FormatSignedInt16LE, nil
	case mixer.SampleUint8:
		return oto.FormatUnsignedInt8, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedSampleType, s)
	}
}

// NewPlayer opens the system audio output matching dev's configuration
// and wires dev as its sample feed. Call Start to begin playback.
//
// oto allows a single context per process, so open at most one Player.
func NewPlayer(dev *mixer.Device, bufferSize time.Duration) (*Player, error) {
	format, err := otoFormat(dev.Sample())
	if err != nil {
		return nil, err
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   dev.SampleRate(),
		ChannelCount: dev.Channels(),
		Format:       format,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}
	<-ready

	return &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(&deviceReader{dev: dev}),
	}, nil
}

// Start begins pulling audio from the device. Idempotent.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	if !p.started {
		p.player.Play()
		p.started = true
	}

	return nil
}

// Pause stops pulling audio without closing the output. Idempotent.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	if p.started {
		p.player.Pause()
		p.started = false
	}

	return nil
}

// Close stops playback and releases the output stream.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.started = false

	if err := p.player.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
