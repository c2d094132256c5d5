// SPDX-License-Identifier: EPL-2.0

package audioloader

import "slices"

// Audio type names accepted in Config.AudioTypes.
const (
	AudioTypeMP3 = "mp3"
	AudioTypeWAV = "wav"
)

var audioMimeTypes = map[string][]string{
	AudioTypeMP3: {"audio/mpeg"},
	AudioTypeWAV: {"audio/x-wav", "audio/wav"},
}

// SupportedAudioTypes returns every audio type New accepts.
func SupportedAudioTypes() []string {
	return []string{AudioTypeMP3, AudioTypeWAV}
}

// MimeTypes returns the MIME types that select a document for audioType,
// or nil if the type is not supported.
func MimeTypes(audioType string) []string {
	return slices.Clone(audioMimeTypes[audioType])
}

func acceptsMime(audioType, mimeType string) bool {
	return slices.Contains(audioMimeTypes[audioType], mimeType)
}
