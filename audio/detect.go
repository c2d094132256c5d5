// SPDX-License-Identifier: EPL-2.0

package audio

import "bytes"

// Container format keys. These are the keys decoders are registered under.
const (
	FormatWAV    = "wav"
	FormatMP3    = "mp3"
	FormatVorbis = "ogg"
	FormatAIFF   = "aiff"
)

// HeaderSize is the number of leading bytes DetectFormat looks at.
const HeaderSize = 12

// DetectFormat sniffs the container from the first bytes of a file.
// The declared MIME type and file extension are not consulted; what the
// bytes say wins.
func DetectFormat(header []byte) (string, error) {
	if len(header) < 4 {
		return "", ErrShortHeader
	}

	switch {
	case len(header) >= HeaderSize && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV, nil
	case len(header) >= HeaderSize && bytes.Equal(header[:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return FormatAIFF, nil
	case bytes.Equal(header[:4], []byte("OggS")):
		return FormatVorbis, nil
	case bytes.Equal(header[:3], []byte("ID3")):
		return FormatMP3, nil
	case isMPEGFrameSync(header):
		return FormatMP3, nil
	}

	return "", ErrUnknownFormat
}

// isMPEGFrameSync reports an 11 bit frame sync followed by a layer field
// that is not the reserved value.
func isMPEGFrameSync(b []byte) bool {
	if b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return false
	}
	layer := (b[1] >> 1) & 0x03
	version := (b[1] >> 3) & 0x03

	return layer != 0 && version != 1
}
