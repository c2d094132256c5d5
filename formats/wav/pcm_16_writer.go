// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audioloader/utils"
)

const (
	headerSize = 44
	chunkSize  = 8192 // samples per Write
)

// WriteWAV16 writes samples as a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	if err := writeHeader(w, sampleRate, len(samples)); err != nil {
		return err
	}

	buf := make([]byte, 2*min(len(samples), chunkSize))
	for start := 0; start < len(samples); start += chunkSize {
		chunk := samples[start:min(start+chunkSize, len(samples))]
		out := buf[:2*len(chunk)]
		for i, s := range chunk {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}

	return nil
}

// WriteFloat32 quantizes a mono float32 buffer, as produced by
// audio.ReadAll, to 16-bit and writes it with WriteWAV16.
func WriteFloat32(w io.Writer, sampleRate int, samples []float32) error {
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = utils.Float32ToInt16(s)
	}

	return WriteWAV16(w, sampleRate, pcm)
}

func writeHeader(w io.Writer, sampleRate int, numSamples int) error {
	const (
		channels      = 1
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)
	dataSize := uint32(numSamples * blockAlign)

	h := make([]byte, headerSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataSize)
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], formatPCM)
	binary.LittleEndian.PutUint16(h[22:24], channels)
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(h[32:34], blockAlign)
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)

	if _, err := w.Write(h); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	return nil
}
