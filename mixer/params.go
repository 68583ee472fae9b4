// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"

	"github.com/ik5/aud3d/dsp"
	"github.com/ik5/aud3d/utils"
	"github.com/rkusa/gm/math32"
)

// epsilonDist is the distance below which a source direction is treated as
// coincident with the listener.
const epsilonDist = 1e-5

type vec3 = [3]float32

func dot3(a, b vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func length3(a vec3) float32 {
	return math32.Sqrt(dot3(a, a))
}

func normalize3(a vec3) vec3 {
	l := length3(a)
	if l <= 0 {
		return vec3{}
	}

	return vec3{a[0] / l, a[1] / l, a[2] / l}
}

// listenerFrame is the listener's orthonormal basis: right, up and the
// negated forward axis, so local coordinates have +x right, +y up and -z
// straight ahead.
type listenerFrame struct {
	right vec3
	up    vec3
	back  vec3
	pos   vec3
}

func newListenerFrame(lst *listenerProps) listenerFrame {
	fwd := normalize3(lst.Forward)
	up := normalize3(lst.Up)
	right := normalize3(cross3(fwd, up))
	// Re-derive up so a slightly skewed pair still yields a basis.
	up = cross3(right, fwd)

	return listenerFrame{
		right: right,
		up:    up,
		back:  vec3{-fwd[0], -fwd[1], -fwd[2]},
		pos:   lst.Position,
	}
}

// toLocal transforms a world point into listener space.
func (f *listenerFrame) toLocal(p vec3) vec3 {
	rel := vec3{p[0] - f.pos[0], p[1] - f.pos[1], p[2] - f.pos[2]}

	return f.rotate(rel)
}

// rotate transforms a world direction into listener space.
func (f *listenerFrame) rotate(d vec3) vec3 {
	return vec3{dot3(d, f.right), dot3(d, f.up), dot3(d, f.back)}
}

// distanceAttenuation applies one attenuation model. A reference distance
// of zero, or a clamped model with max below reference, bypasses
// attenuation entirely.
func distanceAttenuation(model DistanceModel, dist, ref, maxDist, rolloff float32) float32 {
	clamped := dist

	switch model {
	case DistanceInverseClamped, DistanceLinearClamped, DistanceExponentClamped:
		if maxDist < ref {
			return 1
		}
		clamped = utils.Clamp(clamped, ref, maxDist)
	case DistanceInverse, DistanceLinear, DistanceExponent:
	case DistanceNone:
		return 1
	}

	switch model {
	case DistanceInverse, DistanceInverseClamped:
		d := utils.Lerp(ref, clamped, rolloff)
		if ref > 0 && d > 0 {
			return ref / d
		}
	case DistanceLinear, DistanceLinearClamped:
		if maxDist != ref {
			attn := (clamped - ref) / (maxDist - ref) * rolloff

			return max(1-attn, 0)
		}
	case DistanceExponent, DistanceExponentClamped:
		if clamped > 0 && ref > 0 {
			return math32.Pow(clamped/ref, -rolloff)
		}
	case DistanceNone:
	}

	return 1
}

// coneGains computes the directional gain and high-frequency gain for a
// source facing dir, with the listener along toListener (both unit length).
func coneGains(props *sourceProps, dir, toListener vec3) (float32, float32) {
	angle := deg(math32.Acos(clampf(dot3(dir, toListener), -1, 1))) * 2

	switch {
	case angle <= props.InnerAngle:
		return 1, 1
	case angle >= props.OuterAngle:
		return props.OuterGain, props.OuterGainHF
	}

	scale := (angle - props.InnerAngle) / (props.OuterAngle - props.InnerAngle)

	return utils.Lerp(1, props.OuterGain, scale), utils.Lerp(1, props.OuterGainHF, scale)
}

func deg(rad float32) float32 { return rad * (180 / math32.Pi) }

func clampf(v, lo, hi float32) float32 { return utils.Clamp(v, lo, hi) }

// dopplerPitch returns the pitch multiplier for the doppler model. axis is
// the unit vector from source to listener; velocities are listener-local.
// Saturation is intentional: a source closing at or beyond the speed of
// sound pitches to +infinity, a listener receding at or beyond it to zero.
func dopplerPitch(sos, factor float32, axis, srcVel, lstVel vec3) float32 {
	vls := dot3(lstVel, axis) * factor
	vss := dot3(srcVel, axis) * factor

	numer := sos - vls
	denom := sos - vss

	if numer <= 0 {
		return 0
	}
	if denom <= 0 {
		return float32(math.Inf(1))
	}

	return numer / denom
}

// spreadFromRadius converts an apparent source size into an angular spread.
func spreadFromRadius(radius, dist float32) float32 {
	switch {
	case radius > dist:
		if radius > 0 {
			return 2*math32.Pi - dist/radius*math32.Pi
		}
	case dist > 0:
		return 2 * math32.Asin(radius/dist)
	}

	return 0
}

// calcSourceParams turns the voice's current snapshots into mixing targets:
// per-channel ambisonic gains, send gains, filter coefficients and the
// fixed-point resample step. Runs on the mixing goroutine once per block.
func calcSourceParams(v *Voice, c *Context) {
	props := &v.cur
	lst := &c.listener.cur
	cps := &c.cur
	dev := v.dev

	if v.channels >= 2 {
		calcDirectParams(v, c)

		return
	}

	frame := newListenerFrame(lst)

	var pos, srcVel, dir vec3
	if props.Relative {
		pos = props.Position
		srcVel = props.Velocity
		dir = props.Direction
	} else {
		pos = frame.toLocal(props.Position)
		srcVel = frame.rotate(props.Velocity)
		dir = frame.rotate(props.Direction)
	}
	lstVel := frame.rotate(lst.Velocity)
	if props.Relative {
		lstVel = vec3{}
	}

	dist := length3(pos)

	model := cps.DistanceModel
	if cps.SourceDistanceModel {
		model = props.DistanceModel
	}

	atten := distanceAttenuation(model, dist, props.RefDistance, props.MaxDistance, props.Rolloff)

	coneGain, coneHF := float32(1), float32(1)
	directional := props.Direction != (vec3{}) && props.InnerAngle < 360
	if directional && dist > epsilonDist {
		toListener := vec3{-pos[0] / dist, -pos[1] / dist, -pos[2] / dist}
		coneGain, coneHF = coneGains(props, normalize3(dir), toListener)
	}

	base := utils.Clamp(atten*coneGain*props.Gain, props.MinGain, props.MaxGain) * lst.Gain
	dryGain := base * props.DirectGain
	dryGainHF := coneHF * props.DirectGainHF
	dryGainLF := props.DirectGainLF

	if props.AirAbsorptionFactor > 0 {
		meters := dist * lst.MetersPerUnit
		dryGainHF *= math32.Pow(airAbsorbGainHF, props.AirAbsorptionFactor*meters)
	}

	// Doppler and resample step.
	pitch := props.Pitch
	df := cps.DopplerFactor * props.DopplerFactor
	if df > 0 && dist > epsilonDist {
		axis := vec3{-pos[0] / dist, -pos[1] / dist, -pos[2] / dist}
		sos := cps.SpeedOfSound * cps.DopplerVelocity
		pitch *= dopplerPitch(sos, df, axis, srcVel, lstVel)
	}
	v.step = pitchToStep(pitch, v.srcRate, dev.sampleRate)

	// Panning direction and spread.
	spread := spreadFromRadius(props.Radius, dist)

	var dirN vec3
	if dist > epsilonDist {
		dirN = vec3{pos[0] / dist, pos[1] / dist, pos[2] / dist}
	} else {
		dirN = vec3{0, 0, -1}
	}

	ch := &v.chans[0]

	if dev.cfg.Render == RenderHrtf {
		az := math32.Atan2(dirN[0], -dirN[2])
		ev := math32.Asin(clampf(dirN[1], -1, 1))
		dev.hrtf.Coefficients(ev, az, dist*lst.MetersPerUnit, spread, &ch.hrtf)
		ch.hrtfGainTgt = dryGain
	} else {
		coeffs := dsp.DirectionCoeffs(dirN[0], dirN[1], dirN[2], spread)
		dsp.PanGains(&coeffs, dryGain, dsp.AmbiChannels, ch.dryTgt[:])
	}

	// Near-field control filter for the directional components.
	v.useNfc = false
	if dev.nfcW1 > 0 && dev.cfg.Render != RenderHrtf {
		if v.fresh {
			ch.nfc.Init(dev.nfcW1)
		}
		meters := max(dist*lst.MetersPerUnit, epsilonDist)
		w0 := min(speedOfSoundMeters/(meters*float32(dev.sampleRate)), maxNfcW0)
		ch.nfc.Adjust(w0)
		v.useNfc = true
	}

	setShelves(v, ch, dryGainHF, dryGainLF)

	// Sends share the attenuated base gain before the direct filter.
	for si := range props.Sends {
		send := &props.Sends[si]
		if send.Slot == nil {
			ch.wetTgt[si] = [dsp.AmbiChannels]float32{}

			continue
		}

		coeffs := dsp.DirectionCoeffs(dirN[0], dirN[1], dirN[2], spread)
		dsp.PanGains(&coeffs, base*send.Gain, dsp.AmbiChannels, ch.wetTgt[si][:])
		setSendShelves(v, ch, si, send.GainHF, send.GainLF)
	}
}

// maxNfcW0 bounds the near-field cutoff for sources nearly on top of the
// listener.
const maxNfcW0 = 0.5

// calcDirectParams handles non-spatialized (multichannel) sources: fixed
// pan angles, no distance or doppler processing.
func calcDirectParams(v *Voice, c *Context) {
	props := &v.cur
	lst := &c.listener.cur
	dev := v.dev

	gain := utils.Clamp(props.Gain, props.MinGain, props.MaxGain) * lst.Gain
	dryGain := gain * props.DirectGain

	v.step = pitchToStep(props.Pitch, v.srcRate, dev.sampleRate)

	for cidx := 0; cidx < v.channels; cidx++ {
		ch := &v.chans[cidx]
		az := dsp.ScaleAzimuthFront(props.StereoPan[cidx], stereoAzimuthScale)

		if dev.cfg.Render == RenderHrtf {
			dev.hrtf.Coefficients(0, az, 0, 0, &ch.hrtf)
			ch.hrtfGainTgt = dryGain
		} else {
			coeffs := dsp.AngleCoeffs(az, 0, 0)
			dsp.PanGains(&coeffs, dryGain, dsp.AmbiChannels, ch.dryTgt[:])
		}

		setShelves(v, ch, props.DirectGainHF, props.DirectGainLF)

		for si := range props.Sends {
			send := &props.Sends[si]
			if send.Slot == nil {
				ch.wetTgt[si] = [dsp.AmbiChannels]float32{}

				continue
			}

			coeffs := dsp.AngleCoeffs(az, 0, 0)
			dsp.PanGains(&coeffs, gain*send.Gain, dsp.AmbiChannels, ch.wetTgt[si][:])
			setSendShelves(v, ch, si, send.GainHF, send.GainLF)
		}
	}

	v.useNfc = false
}

// stereoAzimuthScale widens panned stereo material toward the speaker
// positions.
const stereoAzimuthScale = 1.5

func setShelves(v *Voice, ch *voiceChannel, gainHF, gainLF float32) {
	rate := float32(v.dev.sampleRate)
	ch.highShelf.SetParamsFromSlope(dsp.HighShelf, hfReference/rate, gainHF)
	ch.lowShelf.SetParamsFromSlope(dsp.LowShelf, lfReference/rate, gainLF)
}

func setSendShelves(v *Voice, ch *voiceChannel, si int, gainHF, gainLF float32) {
	rate := float32(v.dev.sampleRate)
	ch.sendHigh[si].SetParamsFromSlope(dsp.HighShelf, hfReference/rate, gainHF)
	ch.sendLow[si].SetParamsFromSlope(dsp.LowShelf, lfReference/rate, gainLF)
}

// pitchToStep converts a pitch multiplier and rate ratio into the
// fixed-point resample step, saturating at the pitch ceiling. A zero (or
// NaN) pitch yields step zero, which the voice mixer skips.
func pitchToStep(pitch float32, srcRate, devRate int) int {
	p := pitch * float32(srcRate) / float32(devRate)
	if !(p < MaxPitch) {
		return MaxPitch << FracBits
	}
	if p <= 0 {
		return 0
	}

	return int(p * FracOne)
}
