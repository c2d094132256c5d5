// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic audio.Source implementations for
// tests. It does not import the audio package so that package can use it
// from its own internal tests.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by a MockSource configured with FailAfter.
var ErrInjected = errors.New("audiotest: injected read failure")

// Waveform returns the value of frame i on channel ch.
type Waveform func(i, ch int) float32

// MockSource generates Frames frames of Waveform.
type MockSource struct {
	Rate     int
	Chans    int
	Frames   int
	Waveform Waveform

	// FailAfter, when positive, makes ReadSamples fail with ErrInjected
	// once that many frames have been produced.
	FailAfter int

	pos    int
	closed bool
}

func NewMockSource(rate, channels, frames int, w Waveform) *MockSource {
	return &MockSource{Rate: rate, Chans: channels, Frames: frames, Waveform: w}
}

// NewSilentSource generates zeros.
func NewSilentSource(rate, channels, frames int) *MockSource {
	return NewConstantSource(rate, channels, frames, 0)
}

// NewConstantSource generates the same value on every channel.
func NewConstantSource(rate, channels, frames int, v float32) *MockSource {
	return NewMockSource(rate, channels, frames, func(int, int) float32 { return v })
}

// NewSineSource generates a sine of freq Hz on every channel.
func NewSineSource(rate, channels, frames int, freq float64) *MockSource {
	return NewMockSource(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	})
}

// NewRampSource generates i/frames, which makes dropped or duplicated
// frames easy to spot.
func NewRampSource(rate, channels, frames int) *MockSource {
	return NewMockSource(rate, channels, frames, func(i, _ int) float32 {
		return float32(i) / float32(frames)
	})
}

func (m *MockSource) SampleRate() int { return m.Rate }
func (m *MockSource) Channels() int   { return m.Chans }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockSource) Closed() bool { return m.closed }

// Produced returns the number of frames handed out so far.
func (m *MockSource) Produced() int { return m.pos }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.FailAfter > 0 && m.pos >= m.FailAfter {
		return 0, ErrInjected
	}
	if m.pos >= m.Frames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.Chans, m.Frames-m.pos)
	if m.FailAfter > 0 {
		frames = min(frames, m.FailAfter-m.pos)
	}

	for f := range frames {
		for ch := range m.Chans {
			dst[f*m.Chans+ch] = m.Waveform(m.pos+f, ch)
		}
	}
	m.pos += frames

	if m.pos >= m.Frames {
		return frames * m.Chans, io.EOF
	}

	return frames * m.Chans, nil
}
