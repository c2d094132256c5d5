// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audioloader/utils"
)

// Resampler converts src to dstRate using Catmull-Rom cubic interpolation
// over a four frame window. It works on interleaved samples and keeps the
// channel count. When downsampling, a one-pole low-pass is applied to the
// source frames before interpolation.
//
// For a source of N frames the resampler emits ceil(N * dstRate / srcRate)
// frames.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// window[1] is the source frame at floor(pos), window[0] the one before
	// it and window[2], window[3] the two after. Frames past the end of the
	// source are padded with copies of the last real frame.
	window [4][]float32
	real   int // real frames held in window[1:], always a prefix
	pos    float64
	primed bool

	in     []float32
	inOff  int
	inLen  int
	srcEOF bool

	filter   bool
	alpha    float32
	lpState  []float32
	lpPrimed bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		in:       make([]float32, (4096/channels)*channels),
		filter:   step > 1.0,
		alpha:    0.5,
		lpState:  make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// nextFrame copies the next source frame into dst. It returns false once
// the source is drained.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for r.inOff >= r.inLen {
		if r.srcEOF {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		r.inOff, r.inLen = 0, n-n%r.channels
	}

	copy(dst, r.in[r.inOff:r.inOff+r.channels])
	r.inOff += r.channels

	if r.filter {
		if !r.lpPrimed {
			copy(r.lpState, dst)
			r.lpPrimed = true
		}
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.lpState[c]
			r.lpState[c] = dst[c]
		}
	}

	return true, nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.nextFrame(r.window[1])
	if err != nil || !ok {
		return err
	}
	copy(r.window[0], r.window[1])
	r.real = 1

	for i := 2; i < len(r.window); i++ {
		ok, err := r.nextFrame(r.window[i])
		if err != nil {
			return err
		}
		if ok {
			r.real++
		} else {
			copy(r.window[i], r.window[i-1])
		}
	}

	return nil
}

// advance slides the window one source frame forward.
func (r *Resampler) advance() error {
	oldest := r.window[0]
	r.window[0], r.window[1], r.window[2] = r.window[1], r.window[2], r.window[3]
	r.window[3] = oldest
	if r.real > 0 {
		r.real--
	}

	ok, err := r.nextFrame(r.window[3])
	if err != nil {
		return err
	}
	if ok {
		r.real++
	} else {
		copy(r.window[3], r.window[2])
	}

	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		for r.pos >= 1 && r.real > 0 {
			r.pos--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if r.real == 0 {
			break
		}

		t := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], t)
		}

		written++
		r.pos += r.step
	}

	if r.real == 0 {
		return written * r.channels, io.EOF
	}

	return written * r.channels, nil
}
