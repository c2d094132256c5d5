// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files.
//
// The fmt chunk is read with github.com/go-audio/riff, resolving
// WAVE_FORMAT_EXTENSIBLE to its SubFormat. Integer PCM at 8, 16, 24 and 32
// bits is decoded by github.com/go-audio/wav; IEEE float at 32 and 64 bits
// is read directly. Samples are normalized to float32 in [-1, 1] and extra
// chunks (LIST, fact, bext, ...) before the data chunk are skipped.
//
// Writing is limited to mono 16-bit PCM, see WriteWAV16.
package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audioloader/audio"
	"github.com/ik5/audioloader/utils"
)

// pcmReader is the part of gowav.Decoder the source needs.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

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
			Data: make([]int, len(dst)),
			Format: &goaudio.Format{
				NumChannels: s.channels,
				SampleRate:  s.sampleRate,
			},
			SourceBitDepth: s.bitDepth,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("wav: %w", err)
	}

	for i, v := range s.intBuf.Data[:n] {
		if s.bitDepth == 8 {
			// 8-bit WAV is unsigned with 128 as silence.
			v -= 128
		}
		dst[i] = utils.IntToFloat32(v, s.bitDepth)
	}

	if n == 0 || n < len(dst) || err == io.EOF {
		return n, io.EOF
	}

	return n, nil
}

type Decoder struct{}

// Decode parses the RIFF header and positions the reader at the first
// sample. Integer PCM is decoded by go-audio, which needs to seek; a reader
// that cannot is buffered in memory first. IEEE float data is read
// directly.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	closer, _ := r.(io.Closer)

	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("wav: reading input: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	wf, data, err := readFormat(rs)
	if err != nil {
		return nil, err
	}

	switch wf.tag {
	case formatIEEEFloat:
		return newFloatSource(wf, data, closer)
	case formatPCM:
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedEncoding, wf.tag)
	}

	switch wf.bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, wf.bitDepth)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wav: rewinding input: %w", err)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingFormatChunk, err)
	}

	return &source{
		dec:        dec,
		closer:     closer,
		sampleRate: wf.sampleRate,
		channels:   wf.channels,
		bitDepth:   wf.bitDepth,
	}, nil
}
