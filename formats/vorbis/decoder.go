// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audioloader/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec    oggReader
	closer io.Closer
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

// ReadSamples fills dst with whole frames. oggvorbis already produces
// interleaved float32, so no conversion is needed.
func (s *source) ReadSamples(dst []float32) (int, error) {
	ch := s.dec.Channels()
	dst = dst[:len(dst)-len(dst)%ch]
	if len(dst) == 0 {
		return 0, nil
	}

	total := 0
	for total < len(dst) {
		n, err := s.dec.Read(dst[total:])
		total += n
		if err == io.EOF {
			return total, io.EOF
		}
		if err != nil {
			return total, fmt.Errorf("vorbis: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return total, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}

	closer, _ := r.(io.Closer)

	return &source{dec: dec, closer: closer}, nil
}
