// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF and uncompressed AIFF-C files with
// github.com/go-audio/aiff.
package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audioloader/audio"
	"github.com/ik5/audioloader/utils"
)

// pcmReader is the part of aiff.Decoder the source needs.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec      pcmReader
	closer   io.Closer
	format   *goaudio.Format
	bitDepth int
	intBuf   *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.format.SampleRate }
func (s *source) Channels() int   { return s.format.NumChannels }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}

	return 4096
}

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

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("aiff: %w", err)
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = utils.IntToFloat32(v, s.bitDepth)
	}

	if n == 0 || n < len(dst) || err == io.EOF {
		return n, io.EOF
	}

	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	closer, _ := r.(io.Closer)

	// go-audio needs to seek between chunks.
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return &source{
		dec:      dec,
		closer:   closer,
		format:   format,
		bitDepth: int(dec.BitDepth),
	}, nil
}
