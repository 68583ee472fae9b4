// SPDX-License-Identifier: EPL-2.0

// Package dsp provides the signal-processing building blocks consumed by the
// mixer package.
//
// The filters here keep per-instance state only; none of them allocate or
// lock while processing, so they are safe to run on the audio thread.
//
//   - Biquad: second-order IIR sections (shelving, pass, peaking), used for
//     distance-based air absorption and direct-path filtering.
//   - NfcFilter: first-order near-field control filter pair, emulating
//     wavefront curvature for close sources and compensating for the
//     playback speaker distance.
//   - BandSplitter: phase-matched low/high band split, used by the front
//     image stabilizer.
//   - Panner: first-order ambisonic encoding coefficients and speaker
//     decoding matrices.
//   - HRTF: a parametric spherical-head model satisfying the coefficient
//     lookup contract of binaural rendering.
//   - Limiter: lookahead peak limiter for the output chain.
//   - Bs2b: headphone crossfeed.
//   - UhjEncoder: two-channel UHJ encoding of first-order ambisonics.
//
// All audio is normalized float32; angles are radians unless noted.
package dsp
