// SPDX-License-Identifier: EPL-2.0

package docarray

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// Manifest is the YAML form of a batch:
//
//	documents:
//	  - uri: speech.mp3
//	  - uri: clip.bin
//	    mime_type: audio/x-wav
//	    chunks:
//	      - uri: part1.wav
type Manifest struct {
	Documents DocumentArray `yaml:"documents"`
}

// ReadManifest parses a manifest from r. Documents without an ID get a
// random one and documents without a MIME type get one guessed from their
// URI. Relative URIs are resolved against baseDir when it is not empty.
func ReadManifest(r io.Reader, baseDir string) (DocumentArray, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	m.Documents.normalize(baseDir)

	return m.Documents, nil
}

// LoadManifest reads the manifest at path, resolving relative URIs against
// the manifest's directory.
func LoadManifest(path string) (DocumentArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	return ReadManifest(f, filepath.Dir(path))
}

// WriteManifest writes da as YAML. Blob is never written.
func WriteManifest(w io.Writer, da DocumentArray) error {
	data, err := yaml.Marshal(Manifest{Documents: da})
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

func (da DocumentArray) normalize(baseDir string) {
	for _, d := range da {
		if d == nil {
			continue
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.URI != "" && baseDir != "" && !strings.Contains(d.URI, "://") && !filepath.IsAbs(d.URI) {
			d.URI = filepath.Join(baseDir, d.URI)
		}
		if d.MimeType == "" {
			d.MimeType = GuessMimeType(d.URI)
		}
		if d.Tags == nil {
			d.Tags = map[string]any{}
		}
		d.Chunks.normalize(baseDir)
		d.Matches.normalize(baseDir)
	}
}
