// SPDX-License-Identifier: EPL-2.0

// Package effects provides effect DSP implementations for mixer effect
// slots. Each effect satisfies mixer.EffectState: Update reconfigures
// coefficients when slot parameters arrive and Process renders one block of
// the slot's accumulated wet input.
//
// All delay lines are sized at construction; Update and Process never
// allocate, keeping them safe on the mixing goroutine.
package effects
