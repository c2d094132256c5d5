// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePCM struct {
	data []int
}

func (f *fakePCM) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, f.data)
	f.data = f.data[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("definitely not an AIFF file")))
	assert.ErrorIs(t, err, ErrNotAiffFile)
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		data     []int
		want     []float32
	}{
		{"16-bit", 16, []int{0, 16384, -16384, -32768}, []float32{0, 0.5, -0.5, -1}},
		{"24-bit", 24, []int{4194304, -8388608}, []float32{0.5, -1}},
		{"8-bit signed", 8, []int{64, -128}, []float32{0.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{
				dec:      &fakePCM{data: tt.data},
				format:   &goaudio.Format{NumChannels: 1, SampleRate: 8000},
				bitDepth: tt.bitDepth,
			}
			assert.Equal(t, 8000, src.SampleRate())
			assert.Equal(t, 1, src.Channels())

			buf := make([]float32, 3)
			var got []float32
			for {
				n, err := src.ReadSamples(buf)
				got = append(got, buf[:n]...)
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
			}

			assert.InDeltaSlice(t, tt.want, got, 1e-6)
		})
	}
}
