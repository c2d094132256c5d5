// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePCM stands in for gomp3.Decoder, handing out at most chunk bytes per
// Read.
type fakePCM struct {
	rate  int
	data  []byte
	chunk int
	err   error
}

func newFakePCM(rate, chunk int, samples ...int16) *fakePCM {
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}

	return &fakePCM{rate: rate, data: data, chunk: chunk}
}

func (f *fakePCM) SampleRate() int { return f.rate }

func (f *fakePCM) Read(p []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if len(f.data) == 0 {
		return 0, io.EOF
	}

	n := copy(p[:min(len(p), f.chunk)], f.data)
	f.data = f.data[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"text":  []byte("This is not MP3 data"),
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decoder{}.Decode(bytes.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: newFakePCM(44100, 64), buf: make([]byte, 8192)}

	assert.Equal(t, 44100, src.SampleRate())
	assert.Equal(t, 2, src.Channels())
	assert.Equal(t, 4096, src.BufSize())
	assert.NoError(t, src.Close())
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	want := []int16{0, 16384, 32767, -16384, -32768, 8192, -8192, 0, 1, -1}
	// A short chunk forces ReadSamples to stitch several decoder reads.
	src := &source{dec: newFakePCM(8000, 6, want...)}

	buf := make([]float32, 4)
	var got []float32
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	require.Len(t, got, len(want))
	for i, s := range want {
		assert.InDelta(t, float32(s)/32768, got[i], 1e-6, "sample %d", i)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	fake := newFakePCM(8000, 64, 1, 2)
	fake.err = io.ErrClosedPipe
	src := &source{dec: fake}

	_, err := src.ReadSamples(make([]float32, 4))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestSource_EmptyDst(t *testing.T) {
	t.Parallel()

	src := &source{dec: newFakePCM(8000, 64, 1, 2)}
	n, err := src.ReadSamples(nil)

	assert.Zero(t, n)
	assert.NoError(t, err)
}

// testdata/tone.mp3 is 40 frames of MPEG-2 Layer III, 22050 Hz mono at
// 48 kbit/s behind an ID3v2 tag. Each frame carries 576 samples.
func TestDecoder_File(t *testing.T) {
	t.Parallel()

	f, err := os.Open("testdata/tone.mp3")
	require.NoError(t, err)

	src, err := Decoder{}.Decode(f)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 22050, src.SampleRate())
	assert.Equal(t, 2, src.Channels())

	buf := make([]float32, 1000)
	var got []float32
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	require.Len(t, got, 40*576*2)

	var energy float64
	for i := 0; i < len(got); i += 2 {
		// mono input is duplicated onto both channels
		require.Equal(t, got[i], got[i+1], "frame %d", i/2)
		require.LessOrEqual(t, math.Abs(float64(got[i])), 1.0)
		energy += float64(got[i]) * float64(got[i])
	}
	assert.Greater(t, math.Sqrt(energy/float64(len(got)/2)), 0.001)
}
