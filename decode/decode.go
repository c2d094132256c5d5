// SPDX-License-Identifier: EPL-2.0

// Package decode loads an audio file from disk into a mono float32 buffer
// at a requested sample rate.
//
// The container is identified from the file content, not from its name or
// declared MIME type, and decoded by whichever decoder is registered for it
// (wav, mp3, ogg and aiff by default).
package decode

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/ik5/audioloader/audio"
	"github.com/ik5/audioloader/formats/aiff"
	"github.com/ik5/audioloader/formats/mp3"
	"github.com/ik5/audioloader/formats/vorbis"
	"github.com/ik5/audioloader/formats/wav"
)

// Decoder is safe for concurrent use; Load keeps no state between calls.
type Decoder struct {
	registry *audio.Registry
	quality  audio.Quality
	bufSize  int
}

type Option func(*Decoder)

// WithQuality picks the resampling engine.
func WithQuality(q audio.Quality) Option {
	return func(d *Decoder) { d.quality = q }
}

// WithBufferSize sets the read chunk size in samples.
func WithBufferSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.bufSize = n
		}
	}
}

// WithRegistry replaces the default decoder set.
func WithRegistry(r *audio.Registry) Option {
	return func(d *Decoder) {
		if r != nil {
			d.registry = r
		}
	}
}

// DefaultRegistry returns a registry with every format this module decodes.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(audio.FormatWAV, wav.Decoder{})
	r.Register(audio.FormatMP3, mp3.Decoder{})
	r.Register(audio.FormatVorbis, vorbis.Decoder{})
	r.Register(audio.FormatAIFF, aiff.Decoder{})

	return r
}

func New(opts ...Option) *Decoder {
	d := &Decoder{
		registry: DefaultRegistry(),
		quality:  audio.QualityCubic,
		bufSize:  audio.DefaultBufSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Load decodes the file at uri, mixes it down to mono and resamples it to
// targetRate. uri is a local path or a file:// URL. The returned rate is
// always targetRate.
func (d *Decoder) Load(uri string, targetRate int) ([]float32, int, error) {
	if targetRate <= 0 {
		return nil, 0, fmt.Errorf("%w: %d", audio.ErrInvalidRate, targetRate)
	}

	path, err := LocalPath(uri)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	// The decoders close f through Source.Close; this covers early returns.
	defer f.Close()

	format, err := sniff(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	dec, ok := d.registry.Get(format)
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w: %s", path, ErrNoDecoder, format)
	}

	src, err := dec.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w: %w", path, ErrCorrupt, err)
	}
	defer src.Close()

	samples, rate, err := audio.ReadAll(src, targetRate, d.quality, d.bufSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w: %w", path, ErrCorrupt, err)
	}

	return samples, rate, nil
}

// Formats lists the container keys this decoder can handle.
func (d *Decoder) Formats() []string {
	return d.registry.Formats()
}

// sniff reads the header of f, detects the container and rewinds f.
func sniff(f io.ReadSeeker) (string, error) {
	header := make([]byte, audio.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	format, err := audio.DetectFormat(header[:n])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	return format, nil
}

// LocalPath turns uri into a filesystem path. Plain paths are returned
// as-is; file:// URLs are unescaped; any other scheme is rejected.
func LocalPath(uri string) (string, error) {
	if uri == "" {
		return "", ErrEmptyURI
	}
	if !strings.Contains(uri, "://") {
		return uri, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedScheme, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: remote host %q", ErrUnsupportedScheme, u.Host)
	}

	return u.Path, nil
}
