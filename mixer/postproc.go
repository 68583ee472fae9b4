// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"

	"github.com/ik5/aud3d/dsp"
	"github.com/ik5/aud3d/utils"
)

// speakerTable returns the decoder layout for a channel arrangement.
// Azimuths are radians, positive to the right.
func speakerTable(layout ChannelLayout) []dsp.Speaker {
	const deg = math.Pi / 180

	switch layout {
	case LayoutMono:
		return []dsp.Speaker{{}}
	case LayoutStereo:
		return []dsp.Speaker{{Azimuth: -30 * deg}, {Azimuth: 30 * deg}}
	case LayoutQuad:
		return []dsp.Speaker{
			{Azimuth: -45 * deg}, {Azimuth: 45 * deg},
			{Azimuth: -135 * deg}, {Azimuth: 135 * deg},
		}
	case Layout51:
		return []dsp.Speaker{
			{Azimuth: -30 * deg}, {Azimuth: 30 * deg},
			{}, {LFE: true},
			{Azimuth: -110 * deg}, {Azimuth: 110 * deg},
		}
	case Layout71:
		return []dsp.Speaker{
			{Azimuth: -30 * deg}, {Azimuth: 30 * deg},
			{}, {LFE: true},
			{Azimuth: -150 * deg}, {Azimuth: 150 * deg},
			{Azimuth: -90 * deg}, {Azimuth: 90 * deg},
		}
	}

	return nil
}

// centerChannel reports the index of the physical center speaker, or -1.
func centerChannel(layout ChannelLayout) int {
	if layout == Layout51 || layout == Layout71 {
		return 2
	}

	return -1
}

// chanDelay is one channel's distance-compensation ring delay.
type chanDelay struct {
	buf  []float32
	pos  int
	gain float32
}

// stabilizer re-derives a center image from the band-split sum of the
// front left/right pair.
type stabilizer struct {
	lsp, rsp dsp.BandSplitter
	lLo, lHi []float32
	rLo, rHi []float32
}

func newStabilizer(sampleRate, blockSize int) *stabilizer {
	// Crossover near 300 Hz, matching the typical center-image band.
	f0 := 300.0 / float32(sampleRate)

	s := &stabilizer{
		lLo: make([]float32, blockSize),
		lHi: make([]float32, blockSize),
		rLo: make([]float32, blockSize),
		rHi: make([]float32, blockSize),
	}
	s.lsp.Init(f0)
	s.rsp.Init(f0)

	return s
}

// process moves part of the correlated front image from left/right into the
// center channel.
func (s *stabilizer) process(left, right, center []float32, frames int) {
	s.lsp.Process(s.lHi[:frames], s.lLo[:frames], left[:frames])
	s.rsp.Process(s.rHi[:frames], s.rLo[:frames], right[:frames])

	for i := range frames {
		lfsum := s.lLo[i] + s.rLo[i]
		hfsum := s.lHi[i] + s.rHi[i]
		add := lfsum*(1.0/3.0) + hfsum*0.25

		center[i] += add
		left[i] = s.lLo[i] + s.lHi[i] - add*0.5
		right[i] = s.rLo[i] + s.rHi[i] - add*0.5
	}
}

// postProcessor is the fixed output tail: spatial decode, optional front
// stabilizer, optional limiter, distance compensation, dither and sample
// packing.
type postProcessor struct {
	sample SampleType
	mode   RenderMode

	decoder    *dsp.Decoder
	uhj        *dsp.UhjEncoder
	bs2b       *dsp.Bs2b
	stab       *stabilizer
	centerIdx  int
	limiter    *dsp.Limiter
	comp       []chanDelay
	dither     bool
	ditherSeed uint32
	quantScale float32

	dryView [dsp.AmbiChannels][]float32
}

func newPostProcessor(d *Device) *postProcessor {
	cfg := d.cfg

	p := &postProcessor{
		sample:    cfg.Sample,
		mode:      cfg.Render,
		centerIdx: -1,
	}

	switch cfg.Render {
	case RenderSpeakers, RenderHrtf:
		p.decoder = dsp.NewDecoder(speakerTable(cfg.Layout))
	case RenderUhj:
		p.uhj = dsp.NewUhjEncoder()
	case RenderBs2b:
		p.decoder = dsp.NewDecoder(speakerTable(LayoutStereo))
		p.bs2b = dsp.NewBs2b(dsp.Bs2bDefault, cfg.SampleRate)
	}

	if cfg.StabilizeFront {
		if idx := centerChannel(cfg.Layout); idx >= 0 && cfg.Render == RenderSpeakers {
			p.stab = newStabilizer(cfg.SampleRate, d.blockSize)
			p.centerIdx = idx
		}
	}

	if cfg.Limiter {
		// 1 ms look-ahead, slow release.
		look := max(cfg.SampleRate/1000, 16)
		p.limiter = dsp.NewLimiter(d.outChannels, look, 1.0, 0.9995)
	}

	if len(cfg.SpeakerDistances) > 0 {
		maxDist := cfg.SpeakerDistances[0]
		for _, dist := range cfg.SpeakerDistances[1:] {
			maxDist = max(maxDist, dist)
		}

		p.comp = make([]chanDelay, d.outChannels)
		for i := range p.comp {
			dist := cfg.SpeakerDistances[i]
			delay := int((maxDist - dist) / speedOfSoundMeters * float32(cfg.SampleRate))
			gain := float32(1)
			if maxDist > 0 && dist > 0 {
				gain = dist / maxDist
			}
			p.comp[i] = chanDelay{
				buf:  make([]float32, max(delay, 1)),
				gain: gain,
			}
			if delay == 0 {
				p.comp[i].buf = nil
			}
		}
	}

	if cfg.Dither && (cfg.Sample == SampleInt16 || cfg.Sample == SampleUint8) {
		p.dither = true
		p.ditherSeed = 22222
		switch cfg.Sample {
		case SampleInt16:
			p.quantScale = 1.0 / 32768
		case SampleUint8:
			p.quantScale = 1.0 / 128
		}
	}

	return p
}

// process runs decode through distance compensation on the device's
// speaker buffers.
func (p *postProcessor) process(d *Device, frames int) {
	for i := range d.dry {
		p.dryView[i] = d.dry[i][:frames]
	}

	switch p.mode {
	case RenderSpeakers:
		p.decoder.Process(d.spk, p.dryView[:], frames)
	case RenderHrtf:
		// Per-voice binaural rendering, plus a stereo decode of the
		// ambient (effect) bus.
		p.decoder.Process(d.spk, p.dryView[:], frames)
		for i := range frames {
			d.spk[0][i] += d.binaural[0][i]
			d.spk[1][i] += d.binaural[1][i]
		}
	case RenderUhj:
		// B-format W, X, Y in ACN order W=0, Y=1, X=3.
		p.uhj.Encode(d.spk[0][:frames], d.spk[1][:frames],
			d.dry[0], d.dry[3], d.dry[1], frames)
	case RenderBs2b:
		p.decoder.Process(d.spk, p.dryView[:], frames)
		p.bs2b.Process(d.spk[0][:frames], d.spk[1][:frames], frames)
	}

	if p.stab != nil {
		p.stab.process(d.spk[0], d.spk[1], d.spk[p.centerIdx], frames)
	}

	if p.limiter != nil {
		p.limiter.Process(d.spk, frames)
	}

	for i := range p.comp {
		c := &p.comp[i]
		buf := d.spk[i][:frames]
		if c.buf == nil {
			for j := range buf {
				buf[j] *= c.gain
			}

			continue
		}
		for j := range buf {
			out := c.buf[c.pos]
			c.buf[c.pos] = buf[j]
			buf[j] = out * c.gain
			c.pos++
			if c.pos == len(c.buf) {
				c.pos = 0
			}
		}
	}
}

// ditherRng is the linear congruential generator feeding the triangular
// dither noise.
func (p *postProcessor) ditherRng() uint32 {
	p.ditherSeed = p.ditherSeed*96314165 + 907633515

	return p.ditherSeed
}

// pack quantizes, interleaves and writes frames of output into dst,
// returning the remaining space.
func (p *postProcessor) pack(dst []byte, spk [][]float32, frames int) []byte {
	channels := len(spk)

	for i := range frames {
		for c := range channels {
			v := spk[c][i]
			if p.dither {
				const inv = 1.0 / float32(math.MaxUint32)
				r0 := float32(p.ditherRng()) * inv
				r1 := float32(p.ditherRng()) * inv
				v += (r0 - r1) * p.quantScale
			}

			switch p.sample {
			case SampleFloat32:
				bits := math.Float32bits(v)
				dst[0] = byte(bits)
				dst[1] = byte(bits >> 8)
				dst[2] = byte(bits >> 16)
				dst[3] = byte(bits >> 24)
				dst = dst[4:]
			case SampleInt16:
				s := utils.Float32ToInt16(v)
				dst[0] = byte(s)
				dst[1] = byte(uint16(s) >> 8)
				dst = dst[2:]
			case SampleInt32:
				s := utils.Float32ToInt32(v)
				dst[0] = byte(s)
				dst[1] = byte(uint32(s) >> 8)
				dst[2] = byte(uint32(s) >> 16)
				dst[3] = byte(uint32(s) >> 24)
				dst = dst[4:]
			case SampleUint8:
				dst[0] = utils.Float32ToUint8(v)
				dst = dst[1:]
			}
		}
	}

	return dst
}
