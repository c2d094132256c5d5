// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

type sincEngine interface {
	Process(in []float64) ([]float64, error)
}

// flusher is implemented by resampling engines that buffer filter delay
// and can drain it at end of stream.
type flusher interface {
	Flush() ([]float64, error)
}

// engineFactory builds a mono engine; multi-channel audio gets one engine
// per channel.
type engineFactory func(srcRate, dstRate int) (sincEngine, error)

func newSincEngine(srcRate, dstRate int) (sincEngine, error) {
	return resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
}

// maxPadChunks bounds the zero padding fed at end of stream.
const maxPadChunks = 64

// SincResampler converts src to dstRate with the polyphase sinc engine of
// go-audio-resampling. It is slower than Resampler and has no audible
// imaging when downsampling.
//
// The filter delay of the engine is removed, so output frame i lines up
// with source time i/dstRate, and like Resampler it emits exactly
// ceil(N * dstRate / srcRate) frames for a source of N frames.
type SincResampler struct {
	src      Source
	srcRate  int
	dstRate  int
	channels int
	engines  []sincEngine

	raw     []float32
	planes  [][]float64
	outs    [][]float64
	pending []float64 // interleaved

	skip     int // leading output frames still to drop
	inFrames int
	emitted  int
	done     bool
}

func NewSincResampler(src Source, dstRate int) (*SincResampler, error) {
	return newSincResampler(src, dstRate, newSincEngine)
}

func newSincResampler(src Source, dstRate int, factory engineFactory) (*SincResampler, error) {
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidRate
	}

	channels := max(src.Channels(), 1)
	engines := make([]sincEngine, channels)
	for c := range engines {
		engine, err := factory(src.SampleRate(), dstRate)
		if err != nil {
			return nil, fmt.Errorf("creating sinc resampler: %w", err)
		}
		engines[c] = engine
	}

	delay, err := measureDelay(factory, src.SampleRate(), dstRate)
	if err != nil {
		return nil, fmt.Errorf("measuring sinc resampler delay: %w", err)
	}

	return &SincResampler{
		src:      src,
		srcRate:  src.SampleRate(),
		dstRate:  dstRate,
		channels: channels,
		engines:  engines,
		raw:      make([]float32, (4096/channels)*channels),
		planes:   make([][]float64, channels),
		outs:     make([][]float64, channels),
		skip:     delay,
	}, nil
}

// measureDelay runs an impulse through a fresh engine and returns how many
// output frames its peak lags the ideal position.
func measureDelay(factory engineFactory, srcRate, dstRate int) (int, error) {
	engine, err := factory(srcRate, dstRate)
	if err != nil {
		return 0, err
	}

	// Place the impulse where it maps onto a whole output frame if the
	// rates allow it.
	lead := 1024
	if step := srcRate / gcd(srcRate, dstRate); step <= 4096 {
		lead = step * ((lead + step - 1) / step)
	}

	impulse := make([]float64, lead+16384+512*(srcRate/dstRate))
	impulse[lead] = 1

	out, err := processAll(engine, impulse)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}

	peak := 0
	for i, v := range out {
		if math.Abs(v) > math.Abs(out[peak]) {
			peak = i
		}
	}

	at := float64(peak)
	if peak > 0 && peak < len(out)-1 {
		a, b, c := out[peak-1], out[peak], out[peak+1]
		if d := a - 2*b + c; d != 0 {
			at += 0.5 * (a - c) / d
		}
	}

	ideal := float64(lead) * float64(dstRate) / float64(srcRate)

	return max(int(math.Round(at-ideal)), 0), nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// processAll processes in and flushes the engine when it supports it.
func processAll(engine sincEngine, in []float64) ([]float64, error) {
	out, err := engine.Process(in)
	if err != nil {
		return nil, err
	}

	if f, ok := engine.(flusher); ok {
		tail, err := f.Flush()
		if err != nil {
			return nil, err
		}
		out = append(out, tail...)
	}

	return out, nil
}

func (s *SincResampler) SampleRate() int { return s.dstRate }
func (s *SincResampler) Channels() int   { return s.channels }
func (s *SincResampler) BufSize() int    { return s.src.BufSize() }

func (s *SincResampler) Close() error {
	if err := s.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// push interleaves one output block per channel into pending, dropping
// what is left of the filter delay.
func (s *SincResampler) push(outs [][]float64) {
	frames := len(outs[0])
	for _, o := range outs[1:] {
		frames = min(frames, len(o))
	}

	drop := min(s.skip, frames)
	s.skip -= drop
	for i := drop; i < frames; i++ {
		for c := range outs {
			s.pending = append(s.pending, outs[c][i])
		}
	}
}

// process runs every channel of the interleaved block in through its
// engine, or drains the engines that support it when flush is set.
func (s *SincResampler) process(in []float32, flush bool) error {
	frames := len(in) / s.channels
	for c, engine := range s.engines {
		var (
			out []float64
			err error
		)
		if flush {
			if f, ok := engine.(flusher); ok {
				out, err = f.Flush()
			}
		} else {
			plane := s.planes[c][:0]
			for i := range frames {
				plane = append(plane, float64(in[i*s.channels+c]))
			}
			s.planes[c] = plane
			out, err = engine.Process(plane)
		}
		if err != nil {
			return fmt.Errorf("resample: %w", err)
		}
		s.outs[c] = out
	}
	s.push(s.outs)

	return nil
}

func (s *SincResampler) fill() error {
	n, err := s.src.ReadSamples(s.raw)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w", err)
	}
	eof := err == io.EOF
	n -= n % s.channels

	if n > 0 {
		s.inFrames += n / s.channels
		if err := s.process(s.raw[:n], false); err != nil {
			return err
		}
	}

	if eof {
		return s.finish()
	}

	return nil
}

// finish pushes the delayed tail out of the engines with silence and cuts
// the stream to its exact length.
func (s *SincResampler) finish() error {
	s.done = true

	want := (s.inFrames*s.dstRate + s.srcRate - 1) / s.srcRate
	have := func() int { return s.emitted + len(s.pending)/s.channels }

	silence := make([]float32, len(s.raw))
	for range maxPadChunks {
		if have() >= want {
			break
		}
		if err := s.process(silence, false); err != nil {
			return err
		}
	}
	if err := s.process(nil, true); err != nil {
		return err
	}

	keep := max(want-s.emitted, 0) * s.channels
	if len(s.pending) > keep {
		s.pending = s.pending[:keep]
	}
	if missing := keep - len(s.pending); missing > 0 {
		s.pending = append(s.pending, make([]float64, missing)...)
	}

	return nil
}

func (s *SincResampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	for len(s.pending) < len(dst) && !s.done {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}

	n := min(len(dst), len(s.pending))
	n -= n % s.channels
	for i := range n {
		dst[i] = float32(s.pending[i])
	}
	s.pending = s.pending[n:]
	s.emitted += n / s.channels

	if s.done && len(s.pending) < s.channels {
		return n, io.EOF
	}

	return n, nil
}
