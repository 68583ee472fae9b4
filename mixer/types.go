// SPDX-License-Identifier: EPL-2.0

package mixer

// DistanceModel selects the distance attenuation formula.
type DistanceModel int

const (
	// DistanceInverse divides by distance past the reference distance.
	DistanceInverse DistanceModel = iota
	// DistanceInverseClamped clips distance to [ref, max] first.
	DistanceInverseClamped
	// DistanceLinear fades linearly from ref to max distance.
	DistanceLinear
	// DistanceLinearClamped clips distance to [ref, max] first.
	DistanceLinearClamped
	// DistanceExponent applies a power-law rolloff.
	DistanceExponent
	// DistanceExponentClamped clips distance to [ref, max] first.
	DistanceExponentClamped
	// DistanceNone disables distance attenuation.
	DistanceNone
)

// ResamplerType selects the interpolation quality of the voice resampler.
type ResamplerType int

const (
	// ResamplePoint is nearest-sample, no interpolation.
	ResamplePoint ResamplerType = iota
	// ResampleLinear interpolates between adjacent frames.
	ResampleLinear
	// ResampleCubic uses 4-point Catmull-Rom interpolation.
	ResampleCubic
)

// SourceState is the play state of a source as seen by control code.
type SourceState int

const (
	// StateInitial means the source has never played.
	StateInitial SourceState = iota
	// StatePlaying means a voice is actively mixing the source.
	StatePlaying
	// StatePaused means a voice holds the source's position without
	// mixing.
	StatePaused
	// StateStopped means playback ended or was stopped.
	StateStopped
)

func (s SourceState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}

	return "unknown"
}

// ChannelLayout is the physical speaker arrangement of the output.
type ChannelLayout int

const (
	// LayoutMono is a single speaker.
	LayoutMono ChannelLayout = iota
	// LayoutStereo is left/right at +-30 degrees.
	LayoutStereo
	// LayoutQuad is four speakers at +-45 and +-135 degrees.
	LayoutQuad
	// Layout51 is 5.1 surround.
	Layout51
	// Layout71 is 7.1 surround.
	Layout71
)

// Channels reports the output channel count of the layout, including the
// LFE channel where present.
func (l ChannelLayout) Channels() int {
	switch l {
	case LayoutMono:
		return 1
	case LayoutStereo:
		return 2
	case LayoutQuad:
		return 4
	case Layout51:
		return 6
	case Layout71:
		return 8
	}

	return 0
}

// SampleType is the output sample encoding of Device.Mix.
type SampleType int

const (
	// SampleFloat32 is IEEE 754 little-endian float.
	SampleFloat32 SampleType = iota
	// SampleInt16 is signed 16-bit little-endian.
	SampleInt16
	// SampleInt32 is signed 32-bit little-endian.
	SampleInt32
	// SampleUint8 is unsigned 8-bit with a 128 bias.
	SampleUint8
)

// Bytes reports the encoded size of one sample.
func (t SampleType) Bytes() int {
	switch t {
	case SampleFloat32, SampleInt32:
		return 4
	case SampleInt16:
		return 2
	case SampleUint8:
		return 1
	}

	return 0
}

func (t SampleType) String() string {
	switch t {
	case SampleFloat32:
		return "float32"
	case SampleInt16:
		return "int16"
	case SampleInt32:
		return "int32"
	case SampleUint8:
		return "uint8"
	}

	return "unknown"
}

// RenderMode selects the spatial decode stage of the output pipeline.
type RenderMode int

const (
	// RenderSpeakers decodes the ambisonic bus to the speaker layout.
	RenderSpeakers RenderMode = iota
	// RenderHrtf renders binaurally for headphones. Stereo only.
	RenderHrtf
	// RenderUhj encodes stereo-compatible UHJ. Stereo only.
	RenderUhj
	// RenderBs2b decodes to stereo and applies Bauer crossfeed.
	RenderBs2b
)

func (m RenderMode) String() string {
	switch m {
	case RenderSpeakers:
		return "speakers"
	case RenderHrtf:
		return "hrtf"
	case RenderUhj:
		return "uhj"
	case RenderBs2b:
		return "bs2b"
	}

	return "unknown"
}
