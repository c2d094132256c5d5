// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

var waveID = [4]byte{'W', 'A', 'V', 'E'}

// ksDataFormatSuffix is bytes 2..16 of every KSDATAFORMAT_SUBTYPE GUID; the
// first two bytes hold the plain format tag.
var ksDataFormatSuffix = []byte{
	0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00,
	0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71,
}

// waveFormat is the fmt chunk with WAVE_FORMAT_EXTENSIBLE resolved to the
// tag of its SubFormat.
type waveFormat struct {
	tag        uint16
	channels   int
	sampleRate int
	bitDepth   int
}

// maxFmtSize bounds the fmt chunk body; extensible headers are 40 bytes.
const maxFmtSize = 1024

// readFormat walks the RIFF chunks of r up to the data chunk. It returns
// the parsed fmt chunk and a reader over the data chunk body.
func readFormat(r io.Reader) (waveFormat, io.Reader, error) {
	parser := riff.New(r)

	id, _, err := parser.IDnSize()
	if err != nil || id != riff.RiffID {
		return waveFormat{}, nil, ErrNotWavFile
	}

	var form [4]byte
	if _, err := io.ReadFull(r, form[:]); err != nil || form != waveID {
		return waveFormat{}, nil, ErrNotWavFile
	}

	var (
		wf      waveFormat
		haveFmt bool
	)
	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			return waveFormat{}, nil, fmt.Errorf("%w: %w", ErrMissingFormatChunk, err)
		}

		switch chunk.ID {
		case riff.FmtID:
			wf, err = parseFmt(chunk)
			if err != nil {
				return waveFormat{}, nil, err
			}
			haveFmt = true
		case riff.DataFormatID:
			if !haveFmt {
				return waveFormat{}, nil, fmt.Errorf("%w: data chunk before fmt", ErrMissingFormatChunk)
			}

			return wf, io.LimitReader(chunk.R, int64(chunk.Size)), nil
		default:
			chunk.Drain()
		}
	}
}

func parseFmt(chunk *riff.Chunk) (waveFormat, error) {
	if chunk.Size < 16 || chunk.Size > maxFmtSize {
		return waveFormat{}, ErrMissingFormatChunk
	}
	body := make([]byte, chunk.Size)
	if _, err := io.ReadFull(chunk, body); err != nil {
		return waveFormat{}, ErrMissingFormatChunk
	}

	wf := waveFormat{
		tag:        binary.LittleEndian.Uint16(body[0:2]),
		channels:   int(binary.LittleEndian.Uint16(body[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(body[4:8])),
		bitDepth:   int(binary.LittleEndian.Uint16(body[14:16])),
	}
	if wf.channels == 0 || wf.sampleRate == 0 {
		return waveFormat{}, ErrMissingFormatChunk
	}

	if wf.tag != formatExtensible {
		return wf, nil
	}

	// cbSize(2) validBits(2) channelMask(4) subFormat(16)
	if len(body) < 40 || binary.LittleEndian.Uint16(body[16:18]) < 22 {
		return waveFormat{}, fmt.Errorf("%w: truncated extensible fmt", ErrUnsupportedEncoding)
	}
	subFormat := body[24:40]
	if !bytes.Equal(subFormat[2:], ksDataFormatSuffix) {
		return waveFormat{}, fmt.Errorf("%w: sub format %x", ErrUnsupportedEncoding, subFormat)
	}
	wf.tag = binary.LittleEndian.Uint16(subFormat[0:2])

	return wf, nil
}
