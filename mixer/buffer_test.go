// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"testing"

	goaudio "github.com/go-audio/audio"
)

func TestNewBuffer(t *testing.T) {
	t.Parallel()

	b, err := NewBuffer([][]float32{{1, 2}, {3, 4}}, 44100)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if b.Channels() != 2 || b.Frames() != 2 || b.SampleRate() != 44100 {
		t.Fatalf("buffer = %dch %dfr @%d, want 2ch 2fr @44100",
			b.Channels(), b.Frames(), b.SampleRate())
	}
	if b.Samples(1)[0] != 3 {
		t.Fatalf("Samples(1)[0] = %v, want 3", b.Samples(1)[0])
	}
}

func TestNewBufferValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewBuffer(nil, 44100); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("no channels: err = %v, want ErrFormatMismatch", err)
	}
	if _, err := NewBuffer([][]float32{{1}, {1}, {1}}, 44100); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("3 channels: err = %v, want ErrFormatMismatch", err)
	}
	if _, err := NewBuffer([][]float32{{1, 2}, {3}}, 44100); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("ragged channels: err = %v, want ErrFormatMismatch", err)
	}
	if _, err := NewBuffer([][]float32{{1}}, 0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("zero rate: err = %v, want ErrInvalidValue", err)
	}
}

func TestBufferFromPCM(t *testing.T) {
	t.Parallel()

	pcm := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: 8000},
		SourceBitDepth: 16,
		Data:           []int{16384, -16384, 32767, -32768},
	}

	b, err := BufferFromPCM(pcm)
	if err != nil {
		t.Fatalf("BufferFromPCM: %v", err)
	}
	if b.Channels() != 2 || b.Frames() != 2 {
		t.Fatalf("buffer = %dch %dfr, want 2ch 2fr", b.Channels(), b.Frames())
	}
	if got := b.Samples(0)[0]; got != 0.5 {
		t.Errorf("left[0] = %v, want 0.5", got)
	}
	if got := b.Samples(1)[1]; got != -1.0 {
		t.Errorf("right[1] = %v, want -1", got)
	}
}

func TestBufferFromPCMValidation(t *testing.T) {
	t.Parallel()

	if _, err := BufferFromPCM(nil); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("nil pcm: err = %v, want ErrInvalidValue", err)
	}

	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 6, SampleRate: 8000},
		Data:   make([]int, 12),
	}
	if _, err := BufferFromPCM(pcm); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("6 channels: err = %v, want ErrFormatMismatch", err)
	}
}

func TestBufferFromFloat(t *testing.T) {
	t.Parallel()

	pcm := &goaudio.FloatBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: 48000},
		Data:   []float64{0.25, -0.75},
	}

	b, err := BufferFromFloat(pcm)
	if err != nil {
		t.Fatalf("BufferFromFloat: %v", err)
	}
	if got := b.Samples(0)[1]; got != -0.75 {
		t.Errorf("sample 1 = %v, want -0.75", got)
	}
}
