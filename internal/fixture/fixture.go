// SPDX-License-Identifier: EPL-2.0

// Package fixture writes small audio and non-audio files for tests.
package fixture

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audioloader/formats/wav"
)

// SineWAV writes a mono 16-bit WAV holding frames samples of a 440 Hz sine
// at rate and returns its path.
func SineWAV(t testing.TB, dir, name string, rate, frames int) string {
	t.Helper()

	samples := make([]int16, frames)
	for i := range samples {
		v := 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate))
		samples[i] = int16(v * math.MaxInt16)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := wav.WriteWAV16(f, rate, samples); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

// FloatSineWAV writes a mono 32-bit IEEE float WAV holding frames samples
// of a 440 Hz sine with peak 0.5. With extensible set the fmt chunk uses
// WAVE_FORMAT_EXTENSIBLE with the float SubFormat instead of tag 3.
func FloatSineWAV(t testing.TB, dir, name string, rate, frames int, extensible bool) string {
	t.Helper()

	var fmtBody bytes.Buffer
	tag := uint16(3)
	if extensible {
		tag = 0xFFFE
	}
	for _, v := range []any{tag, uint16(1), uint32(rate), uint32(rate * 4), uint16(4), uint16(32)} {
		_ = binary.Write(&fmtBody, binary.LittleEndian, v)
	}
	if extensible {
		for _, v := range []any{uint16(22), uint16(32), uint32(0x4), uint16(3)} {
			_ = binary.Write(&fmtBody, binary.LittleEndian, v)
		}
		fmtBody.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71})
	}

	data := make([]byte, 4*frames)
	for i := range frames {
		v := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}

	var file bytes.Buffer
	file.WriteString("RIFF")
	_ = binary.Write(&file, binary.LittleEndian, uint32(4+8+fmtBody.Len()+8+len(data)))
	file.WriteString("WAVEfmt ")
	_ = binary.Write(&file, binary.LittleEndian, uint32(fmtBody.Len()))
	file.Write(fmtBody.Bytes())
	file.WriteString("data")
	_ = binary.Write(&file, binary.LittleEndian, uint32(len(data)))
	file.Write(data)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, file.Bytes(), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

// Garbage writes content that no decoder recognizes.
func Garbage(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("this is plainly not an audio file\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}
