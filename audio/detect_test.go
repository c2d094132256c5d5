// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   string
		err    error
	}{
		{"riff wave", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), FormatWAV, nil},
		{"id3 tagged mp3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00\x00\x00"), FormatMP3, nil},
		{"mpeg1 layer3 frame", []byte{0xFF, 0xFB, 0x90, 0x64, 0, 0, 0, 0, 0, 0, 0, 0}, FormatMP3, nil},
		{"mpeg2 layer3 frame", []byte{0xFF, 0xF3, 0x48, 0xC4, 0, 0, 0, 0, 0, 0, 0, 0}, FormatMP3, nil},
		{"ogg page", []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00"), FormatVorbis, nil},
		{"aiff", []byte("FORM\x00\x00\x10\x00AIFF"), FormatAIFF, nil},
		{"aifc", []byte("FORM\x00\x00\x10\x00AIFC"), FormatAIFF, nil},
		{"riff but not wave", []byte("RIFF\x24\x00\x00\x00AVI "), "", ErrUnknownFormat},
		{"reserved layer is not mpeg", []byte{0xFF, 0xF9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, "", ErrUnknownFormat},
		{"reserved version is not mpeg", []byte{0xFF, 0xEB, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, "", ErrUnknownFormat},
		{"text", []byte("hello, world"), "", ErrUnknownFormat},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0d"), "", ErrUnknownFormat},
		{"too short", []byte("ID"), "", ErrShortHeader},
		{"short but ogg", []byte("OggS"), FormatVorbis, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DetectFormat(tt.header)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat_Files(t *testing.T) {
	t.Parallel()

	mp3, err := os.ReadFile("../formats/mp3/testdata/tone.mp3")
	require.NoError(t, err)
	ogg, err := os.ReadFile("../formats/vorbis/testdata/tone.ogg")
	require.NoError(t, err)

	// tone.mp3 opens with a 45 byte ID3v2 tag; the first frame follows.
	for name, tc := range map[string]struct {
		data []byte
		want string
	}{
		"mp3 with id3 tag": {mp3, FormatMP3},
		"bare mp3 frame":   {mp3[45:], FormatMP3},
		"ogg vorbis":       {ogg, FormatVorbis},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := DetectFormat(tc.data[:HeaderSize])
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
