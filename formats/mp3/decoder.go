// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III files with
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit little-endian stereo PCM, mono files are
// duplicated onto both channels, so every Source returned here reports two
// channels.
package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audioloader/audio"
)

const channels = 2

// pcmReader is the part of gomp3.Decoder the source needs.
type pcmReader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec    pcmReader
	closer io.Closer
	buf    []byte
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	switch err {
	case nil:
	case io.ErrUnexpectedEOF:
		err = io.EOF
	case io.EOF:
	default:
		return 0, fmt.Errorf("mp3: %w", err)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	return samples, err
}

type Decoder struct{}

// Decode reads the first frame header of r. If r implements io.Closer it is
// closed together with the source.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	closer, _ := r.(io.Closer)

	return &source{
		dec:    dec,
		closer: closer,
		buf:    make([]byte, 8192),
	}, nil
}
