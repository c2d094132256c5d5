// SPDX-License-Identifier: EPL-2.0

// Package docarray is the document model pipeline stages operate on: a
// Document carries a source URI and MIME type in, and a decoded buffer and
// tags out. Documents nest through Chunks and Matches; TraverseFlat turns a
// nested batch into the flat list a stage processes.
package docarray

import (
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Document is a single unit of pipeline data.
type Document struct {
	ID       string         `yaml:"id"`
	MimeType string         `yaml:"mime_type,omitempty"`
	URI      string         `yaml:"uri,omitempty"`
	Tags     map[string]any `yaml:"tags,omitempty"`

	// Blob holds the decoded signal. It is never serialized.
	Blob []float32 `yaml:"-"`

	Chunks  DocumentArray `yaml:"chunks,omitempty"`
	Matches DocumentArray `yaml:"matches,omitempty"`
}

// NewDocument returns a Document with a fresh ID whose MIME type is guessed
// from the extension of uri.
func NewDocument(uri string) *Document {
	return &Document{
		ID:       uuid.NewString(),
		URI:      uri,
		MimeType: GuessMimeType(uri),
		Tags:     map[string]any{},
	}
}

// SetTag writes key into Tags, allocating the map on first use.
func (d *Document) SetTag(key string, value any) {
	if d.Tags == nil {
		d.Tags = make(map[string]any)
	}
	d.Tags[key] = value
}

// audioMimeTypes covers extensions the platform mime table usually lacks.
var audioMimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/x-wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".aif":  "audio/x-aiff",
	".aiff": "audio/x-aiff",
	".flac": "audio/flac",
}

// GuessMimeType maps the extension of uri to a MIME type, without any
// parameters. It returns "" when the extension is unknown.
func GuessMimeType(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}

	ext := strings.ToLower(path.Ext(uri))
	if ext == "" {
		return ""
	}
	if t, ok := audioMimeTypes[ext]; ok {
		return t
	}

	t, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}

	return t
}
