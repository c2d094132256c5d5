// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// floatSource reads IEEE float sample data, 32 or 64 bits, clamped to
// [-1, 1].
type floatSource struct {
	data       io.Reader
	closer     io.Closer
	sampleRate int
	channels   int
	width      int // bytes per sample
	raw        []byte
}

func newFloatSource(wf waveFormat, data io.Reader, closer io.Closer) (*floatSource, error) {
	if wf.bitDepth != 32 && wf.bitDepth != 64 {
		return nil, fmt.Errorf("%w: float %d", ErrUnsupportedBitDepth, wf.bitDepth)
	}

	return &floatSource{
		data:       data,
		closer:     closer,
		sampleRate: wf.sampleRate,
		channels:   wf.channels,
		width:      wf.bitDepth / 8,
	}, nil
}

func (s *floatSource) SampleRate() int { return s.sampleRate }
func (s *floatSource) Channels() int   { return s.channels }
func (s *floatSource) BufSize() int    { return 4096 }

func (s *floatSource) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

func (s *floatSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * s.width
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	s.raw = s.raw[:need]

	read, err := io.ReadFull(s.data, s.raw)
	eof := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
	if err != nil && !eof {
		return 0, fmt.Errorf("wav: %w", err)
	}

	n := read / s.width
	for i := range n {
		b := s.raw[i*s.width:]
		var v float32
		if s.width == 8 {
			v = float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		} else {
			v = math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
		if math.IsNaN(float64(v)) {
			v = 0
		}
		dst[i] = max(-1, min(1, v))
	}

	if eof {
		return n, io.EOF
	}

	return n, nil
}
