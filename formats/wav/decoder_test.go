// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/ik5/audioloader/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunk is a RIFF sub-chunk used to assemble test files.
type chunk struct {
	id   string
	body []byte
}

func fmtChunk(tag, channels uint16, rate uint32, bits uint16) chunk {
	body := make([]byte, 16)
	blockAlign := channels * bits / 8
	binary.LittleEndian.PutUint16(body[0:], tag)
	binary.LittleEndian.PutUint16(body[2:], channels)
	binary.LittleEndian.PutUint32(body[4:], rate)
	binary.LittleEndian.PutUint32(body[8:], rate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(body[12:], blockAlign)
	binary.LittleEndian.PutUint16(body[14:], bits)

	return chunk{"fmt ", body}
}

// extensibleFmt is a WAVE_FORMAT_EXTENSIBLE fmt chunk whose SubFormat is
// the KSDATAFORMAT GUID for tag.
func extensibleFmt(tag, channels uint16, rate uint32, bits uint16) chunk {
	c := fmtChunk(formatExtensible, channels, rate, bits)

	ext := make([]byte, 24)
	binary.LittleEndian.PutUint16(ext[0:], 22)
	binary.LittleEndian.PutUint16(ext[2:], bits)
	binary.LittleEndian.PutUint32(ext[4:], 0x4) // front center
	binary.LittleEndian.PutUint16(ext[8:], tag)
	copy(ext[10:], ksDataFormatSuffix)
	c.body = append(c.body, ext...)

	return c
}

func foreignGUID(c chunk) chunk {
	c.body[len(c.body)-1] ^= 0xFF

	return c
}

func floatData32(values ...float32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}

	return data
}

func buildRIFF(chunks ...chunk) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.WriteString(c.id)
		_ = binary.Write(&body, binary.LittleEndian, uint32(len(c.body)))
		body.Write(c.body)
		if len(c.body)%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

func readAll(t *testing.T, src audio.Source) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, 6)
	for range 10_000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
	t.Fatal("no EOF")

	return nil
}

func TestDecoder_RoundTripPCM16(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767, -32768, 8192, -8192}
	var buf bytes.Buffer
	require.NoError(t, WriteWAV16(&buf, 8000, samples))

	for name, r := range map[string]io.Reader{
		"seeker":     bytes.NewReader(buf.Bytes()),
		"non-seeker": bytes.NewBuffer(bytes.Clone(buf.Bytes())),
	} {
		t.Run(name, func(t *testing.T) {
			src, err := Decoder{}.Decode(r)
			require.NoError(t, err)
			defer src.Close()

			assert.Equal(t, 8000, src.SampleRate())
			assert.Equal(t, 1, src.Channels())

			got := readAll(t, src)
			require.Len(t, got, len(samples))
			for i, s := range samples {
				assert.InDelta(t, float32(s)/32768, got[i], 1e-6, "sample %d", i)
			}
		})
	}
}

func TestDecoder_SkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	data := make([]byte, 8)
	for i, v := range []int16{100, -100, 200, -200} {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(v))
	}
	file := buildRIFF(
		fmtChunk(formatPCM, 2, 44100, 16),
		chunk{"JUNK", make([]byte, 10)},
		chunk{"data", data},
	)

	src, err := Decoder{}.Decode(bytes.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 44100, src.SampleRate())
	assert.Equal(t, 2, src.Channels())

	got := readAll(t, src)
	require.Len(t, got, 4)
	assert.InDelta(t, 100.0/32768, got[0], 1e-6)
	assert.InDelta(t, -200.0/32768, got[3], 1e-6)
}

func TestDecoder_PCM24(t *testing.T) {
	t.Parallel()

	// 0.0 and 0.5 at 24-bit little endian.
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x40}
	file := buildRIFF(fmtChunk(formatPCM, 1, 16000, 24), chunk{"data", data})

	src, err := Decoder{}.Decode(bytes.NewReader(file))
	require.NoError(t, err)

	got := readAll(t, src)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.0, got[0], 1e-6)
	assert.InDelta(t, 0.5, got[1], 1e-6)
}

func TestDecoder_IEEEFloat(t *testing.T) {
	t.Parallel()

	want := []float32{0, 0.0625, -0.5, 0.5, 1, -1}
	data64 := make([]byte, 8*len(want))
	for i, v := range want {
		binary.LittleEndian.PutUint64(data64[8*i:], math.Float64bits(float64(v)))
	}

	tests := map[string][]byte{
		"float32":            buildRIFF(fmtChunk(formatIEEEFloat, 1, 22050, 32), chunk{"data", floatData32(want...)}),
		"float64":            buildRIFF(fmtChunk(formatIEEEFloat, 1, 22050, 64), chunk{"data", data64}),
		"extensible float32": buildRIFF(extensibleFmt(formatIEEEFloat, 1, 22050, 32), chunk{"fact", make([]byte, 4)}, chunk{"data", floatData32(want...)}),
		"chunk after data":   buildRIFF(fmtChunk(formatIEEEFloat, 1, 22050, 32), chunk{"data", floatData32(want...)}, chunk{"LIST", []byte("INFOISFT")}),
	}

	for name, file := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(bytes.NewBuffer(file))
			require.NoError(t, err)
			defer src.Close()

			assert.Equal(t, 22050, src.SampleRate())
			assert.Equal(t, 1, src.Channels())
			assert.InDeltaSlice(t, want, readAll(t, src), 1e-7)
		})
	}
}

func TestDecoder_IEEEFloatClamps(t *testing.T) {
	t.Parallel()

	nan := math.Float32frombits(0x7FC00000)
	file := buildRIFF(fmtChunk(formatIEEEFloat, 2, 8000, 32), chunk{"data", floatData32(1.5, -3, nan, 0.25)})

	src, err := Decoder{}.Decode(bytes.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 2, src.Channels())
	assert.Equal(t, []float32{1, -1, 0, 0.25}, readAll(t, src))
}

func TestDecoder_ExtensiblePCM(t *testing.T) {
	t.Parallel()

	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:], uint16(int16(16384)))
	neg := int16(-8192)
	binary.LittleEndian.PutUint16(data[2:], uint16(neg))
	file := buildRIFF(extensibleFmt(formatPCM, 1, 16000, 16), chunk{"data", data})

	src, err := Decoder{}.Decode(bytes.NewReader(file))
	require.NoError(t, err)

	got := readAll(t, src)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.5, got[0], 1e-6)
	assert.InDelta(t, -0.25, got[1], 1e-6)
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"not riff", []byte("This is not a WAV file at all, just some bytes."), ErrNotWavFile},
		{"empty", nil, ErrNotWavFile},
		{"12-bit", buildRIFF(fmtChunk(formatPCM, 1, 8000, 12), chunk{"data", make([]byte, 8)}), ErrUnsupportedBitDepth},
		{"16-bit float", buildRIFF(fmtChunk(formatIEEEFloat, 1, 8000, 16), chunk{"data", make([]byte, 8)}), ErrUnsupportedBitDepth},
		{"a-law", buildRIFF(fmtChunk(6, 1, 8000, 8), chunk{"data", make([]byte, 8)}), ErrUnsupportedEncoding},
		{"extensible a-law", buildRIFF(extensibleFmt(6, 1, 8000, 8), chunk{"data", make([]byte, 8)}), ErrUnsupportedEncoding},
		{"extensible foreign guid", buildRIFF(foreignGUID(extensibleFmt(formatPCM, 1, 8000, 16)), chunk{"data", make([]byte, 8)}), ErrUnsupportedEncoding},
		{"truncated extensible", buildRIFF(fmtChunk(formatExtensible, 1, 8000, 16), chunk{"data", make([]byte, 8)}), ErrUnsupportedEncoding},
		{"data before fmt", buildRIFF(chunk{"data", make([]byte, 8)}, fmtChunk(formatPCM, 1, 8000, 16)), ErrMissingFormatChunk},
		{"no data", buildRIFF(fmtChunk(formatPCM, 1, 8000, 16)), ErrMissingFormatChunk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

type closeTracker struct {
	*bytes.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestDecoder_ClosesInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteWAV16(&buf, 8000, []int16{1, 2, 3}))
	in := &closeTracker{Reader: bytes.NewReader(buf.Bytes())}

	src, err := Decoder{}.Decode(in)
	require.NoError(t, err)
	require.NoError(t, src.Close())
	assert.True(t, in.closed)
}
