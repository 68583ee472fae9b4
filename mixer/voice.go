// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"sync/atomic"

	"github.com/ik5/aud3d/dsp"
	"github.com/ik5/aud3d/utils"
)

// Voice mixing states. Transitions are single atomic stores; the mixer
// reads the state once per block.
const (
	vStopped int32 = iota
	vPlaying
	vStopping
	vPaused
)

// hrtfHistLen is the per-channel convolution history ring; power of two
// covering the impulse length plus the largest inter-aural delay.
const hrtfHistLen = 128

// voiceChannel is the evolving DSP state of one source channel. It
// persists across blocks while the voice is live.
type voiceChannel struct {
	dryCur, dryTgt [dsp.AmbiChannels]float32
	wetCur, wetTgt [MaxSends][dsp.AmbiChannels]float32

	lowShelf  dsp.Biquad
	highShelf dsp.Biquad
	sendLow   [MaxSends]dsp.Biquad
	sendHigh  [MaxSends]dsp.Biquad

	nfc dsp.NfcFilter

	hrtf                     dsp.HrirFilter
	hrtfGainCur, hrtfGainTgt float32
	hist                     [hrtfHistLen]float32
	histPos                  int
}

// Voice is the mixer-side state of one playing source. Claimed from the
// context pool at play, released at stop; it holds the last published
// parameters plus DSP state that must persist across blocks.
type Voice struct {
	dev *Device

	state  atomic.Int32
	source *Source

	queue atomic.Pointer[[]*Buffer]

	cur   sourceProps
	fresh bool

	// position is the absolute frame offset into the queue, published
	// for mix-consistent offset queries.
	position atomic.Int64
	frac     int
	step     int

	channels int
	srcRate  int

	useNfc bool

	chans [MaxSourceChannels]voiceChannel
}

func newVoice(dev *Device) *Voice {
	return &Voice{dev: dev}
}

// reset prepares a stopped voice for a new playback run. Control side; the
// voice must not be visible to the mixer as active yet.
func (v *Voice) reset(s *Source) {
	v.source = s

	q := make([]*Buffer, len(s.queue))
	copy(q, s.queue)
	v.queue.Store(&q)

	v.cur = s.staged
	s.props.take(&v.cur)
	v.fresh = true

	v.position.Store(0)
	v.frac = 0
	v.step = 0
	v.channels = s.channels
	v.srcRate = s.rate
	v.useNfc = false

	for c := range v.chans {
		ch := &v.chans[c]
		*ch = voiceChannel{}
	}
}

// takeProps picks up newly published source parameters. Mixer side.
func (v *Voice) takeProps() {
	v.source.props.take(&v.cur)
}

// mix renders one block of the voice into the device and send buses.
func (v *Voice) mix(c *Context, frames int) {
	st := v.state.Load()
	if st != vPlaying && st != vStopping {
		return
	}

	calcSourceParams(v, c)

	if v.fresh {
		v.snapToTargets()
		v.fresh = false
	}
	if st == vStopping {
		v.zeroTargets()
	}

	// A step below one subsample per frame is inaudible and would never
	// advance; skip rather than divide time by zero.
	if v.step < 1 {
		if st == vStopping {
			v.finish(StateStopped)
		}

		return
	}

	q := *v.queue.Load()
	total := 0
	for _, b := range q {
		total += b.Frames()
	}

	pos := v.position.Load()
	frac := v.frac
	ended := false

	scratch := &v.dev.scratch
	for cidx := 0; cidx < v.channels; cidx++ {
		ch := &v.chans[cidx]

		endPos, endFrac, chEnded := v.resampleChannel(cidx, scratch.resampled, frames, q, total)
		if cidx == v.channels-1 {
			pos, frac, ended = endPos, endFrac, chEnded
		}

		// Direct path: shelving filters, then near-field compensation
		// on the directional components.
		ch.highShelf.Process(scratch.filtered[:frames], scratch.resampled[:frames])
		ch.lowShelf.Process(scratch.filtered[:frames], scratch.filtered[:frames])

		if v.dev.cfg.Render == RenderHrtf {
			v.mixHrtf(ch, scratch.filtered, frames)
		} else {
			dir := scratch.filtered
			if v.useNfc {
				ch.nfc.Process(scratch.nearField[:frames], scratch.filtered[:frames])
				dir = scratch.nearField
			}
			mixAmbi(v.dev.dry, scratch.filtered, dir, &ch.dryCur, &ch.dryTgt, frames)
		}

		// Send paths: per-send shelving from the unfiltered signal.
		for si := range v.cur.Sends {
			slot := v.cur.Sends[si].Slot
			if slot == nil {
				continue
			}

			ch.sendHigh[si].Process(scratch.filtered[:frames], scratch.resampled[:frames])
			ch.sendLow[si].Process(scratch.filtered[:frames], scratch.filtered[:frames])
			mixAmbi(slot.wet, scratch.filtered, scratch.filtered, &ch.wetCur[si], &ch.wetTgt[si], frames)
		}
	}

	v.position.Store(pos)
	v.frac = frac

	switch {
	case st == vStopping:
		v.finish(StateStopped)
	case ended && !v.cur.Looping:
		v.finish(StateStopped)
	}
}

// snapToTargets starts a fresh voice at its computed gains so the first
// block does not fade in from silence.
func (v *Voice) snapToTargets() {
	for c := range v.chans {
		ch := &v.chans[c]
		ch.dryCur = ch.dryTgt
		ch.wetCur = ch.wetTgt
		ch.hrtfGainCur = ch.hrtfGainTgt
	}
}

// zeroTargets fades the block out for a sample-accurate stop tail.
func (v *Voice) zeroTargets() {
	for c := range v.chans {
		ch := &v.chans[c]
		ch.dryTgt = [dsp.AmbiChannels]float32{}
		for s := range ch.wetTgt {
			ch.wetTgt[s] = [dsp.AmbiChannels]float32{}
		}
		ch.hrtfGainTgt = 0
	}
}

// finish retires the voice and notifies the application. Mixer side.
func (v *Voice) finish(state SourceState) {
	v.state.Store(vStopped)
	if src := v.source; src != nil {
		src.state.Store(int32(state))
		v.dev.events.push(Event{
			Type:   EventSourceStateChanged,
			Source: src,
			State:  state,
		})
	}
}

// resampleChannel produces frames of output-rate samples for one source
// channel, returning the advanced read position.
func (v *Voice) resampleChannel(cidx int, dst []float32, frames int, q []*Buffer, total int) (int64, int, bool) {
	pos := v.position.Load()
	frac := v.frac
	step := v.step
	loop := v.cur.Looping
	ended := false

	for i := range frames {
		if ended {
			dst[i] = 0

			continue
		}

		x := float32(frac) / FracOne
		switch v.cur.Resampler {
		case ResamplePoint:
			dst[i] = v.sampleAt(cidx, pos, q, total, loop)
		case ResampleLinear:
			dst[i] = utils.LinearInterpolate(
				v.sampleAt(cidx, pos, q, total, loop),
				v.sampleAt(cidx, pos+1, q, total, loop),
				x)
		default:
			dst[i] = utils.CubicInterpolate(
				v.sampleAt(cidx, pos-1, q, total, loop),
				v.sampleAt(cidx, pos, q, total, loop),
				v.sampleAt(cidx, pos+1, q, total, loop),
				v.sampleAt(cidx, pos+2, q, total, loop),
				x)
		}

		frac += step
		pos += int64(frac >> FracBits)
		frac &= FracMask

		if pos >= int64(total) {
			if loop && total > 0 {
				pos %= int64(total)
			} else {
				ended = true
			}
		}
	}

	return pos, frac, ended
}

// sampleAt reads one source frame by absolute queue offset, zero outside
// the material (or wrapped when looping).
func (v *Voice) sampleAt(cidx int, pos int64, q []*Buffer, total int, loop bool) float32 {
	if total == 0 {
		return 0
	}
	if loop {
		pos %= int64(total)
		if pos < 0 {
			pos += int64(total)
		}
	} else if pos < 0 || pos >= int64(total) {
		return 0
	}

	for _, b := range q {
		n := int64(b.Frames())
		if pos < n {
			return b.Samples(cidx)[pos]
		}
		pos -= n
	}

	return 0
}

// mixAmbi scatters a channel into an ambisonic bus with per-channel linear
// gain ramps: the omni component from omniSrc, the directional components
// from dirSrc (which may carry near-field filtering).
func mixAmbi(bus [dsp.AmbiChannels][]float32, omniSrc, dirSrc []float32, cur, tgt *[dsp.AmbiChannels]float32, frames int) {
	inv := 1 / float32(frames)
	for a := range bus {
		g := cur[a]
		dg := (tgt[a] - g) * inv
		if g == 0 && dg == 0 {
			continue
		}

		src := omniSrc
		if a != 0 {
			src = dirSrc
		}
		dst := bus[a]
		for i := range frames {
			g += dg
			dst[i] += src[i] * g
		}
		cur[a] = g
	}
	*cur = *tgt
}

// mixHrtf convolves a channel with its head-related impulse response into
// the binaural bus.
func (v *Voice) mixHrtf(ch *voiceChannel, src []float32, frames int) {
	g := ch.hrtfGainCur
	dg := (ch.hrtfGainTgt - g) / float32(frames)

	left := v.dev.binaural[0]
	right := v.dev.binaural[1]
	dl := ch.hrtf.Delay[0]
	dr := ch.hrtf.Delay[1]

	for i := range frames {
		ch.hist[ch.histPos&(hrtfHistLen-1)] = src[i]
		g += dg

		var accL, accR float32
		for k := range dsp.HrirLength {
			accL += ch.hrtf.Coeffs[k][0] * ch.hist[(ch.histPos-dl-k)&(hrtfHistLen-1)]
			accR += ch.hrtf.Coeffs[k][1] * ch.hist[(ch.histPos-dr-k)&(hrtfHistLen-1)]
		}
		left[i] += accL * g
		right[i] += accR * g
		ch.histPos++
	}

	ch.hrtfGainCur = ch.hrtfGainTgt
}
