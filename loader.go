// SPDX-License-Identifier: EPL-2.0

package audioloader

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ik5/audioloader/decode"
	"github.com/ik5/audioloader/docarray"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	DefaultTargetSampleRate = 22050
	DefaultAccessPaths      = "r"

	// SampleRateTag is the Document.Tags key the effective rate is stored under.
	SampleRateTag = "sample_rate"
	// AccessPathsParam overrides the configured access path for one call.
	AccessPathsParam = "access_paths"
)

// DecodeFunc decodes the audio at uri resampled to targetRate and returns
// the samples with the rate they are at.
type DecodeFunc func(uri string, targetRate int) ([]float32, int, error)

// Parameters are per call settings passed to LoadAudio.
type Parameters map[string]any

// Config is the construction time configuration of a Loader.
type Config struct {
	// AudioTypes lists the audio types to load, case insensitive. Empty
	// means every supported type.
	AudioTypes []string `yaml:"audio_types,omitempty"`

	// TargetSampleRate every file is resampled to. Zero means 22050.
	TargetSampleRate int `yaml:"target_sample_rate,omitempty"`

	// AccessPaths selects which documents of a batch are processed.
	// Empty means the root documents.
	AccessPaths string `yaml:"access_paths,omitempty"`

	// TraversalPaths is the former name of AccessPaths. When set it takes
	// precedence and a deprecation warning is logged.
	//
	// Deprecated: use AccessPaths.
	TraversalPaths *string `yaml:"traversal_paths,omitempty"`
}

// Loader decodes the audio referenced by documents. It is immutable after
// New and safe for concurrent LoadAudio calls on distinct batches.
type Loader struct {
	audioTypes       []string
	targetSampleRate int
	accessPaths      string

	decode DecodeFunc
	logger *zap.Logger
}

type Option func(*Loader)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithDecodeFunc replaces the default decode.Decoder.
func WithDecodeFunc(fn DecodeFunc) Option {
	return func(ld *Loader) {
		if fn != nil {
			ld.decode = fn
		}
	}
}

// New validates cfg and returns a ready Loader.
func New(cfg Config, opts ...Option) (*Loader, error) {
	l := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if l.decode == nil {
		l.decode = decode.New().Load
	}

	types := cfg.AudioTypes
	if len(types) == 0 {
		types = SupportedAudioTypes()
	}
	for _, t := range types {
		t = strings.ToLower(t)
		if _, ok := audioMimeTypes[t]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedAudioType, t)
		}
		if !slices.Contains(l.audioTypes, t) {
			l.audioTypes = append(l.audioTypes, t)
		}
	}

	switch {
	case cfg.TargetSampleRate == 0:
		l.targetSampleRate = DefaultTargetSampleRate
	case cfg.TargetSampleRate < 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, cfg.TargetSampleRate)
	default:
		l.targetSampleRate = cfg.TargetSampleRate
	}

	l.accessPaths = cfg.AccessPaths
	if cfg.TraversalPaths != nil {
		l.logger.Warn("'traversal_paths' will be deprecated in the future, please use 'access_paths'",
			zap.String("traversal_paths", *cfg.TraversalPaths),
			zap.String("access_paths", cfg.AccessPaths),
		)
		l.accessPaths = *cfg.TraversalPaths
	}
	if l.accessPaths == "" {
		l.accessPaths = DefaultAccessPaths
	}

	return l, nil
}

func (l *Loader) AudioTypes() []string  { return slices.Clone(l.audioTypes) }
func (l *Loader) TargetSampleRate() int { return l.targetSampleRate }
func (l *Loader) AccessPaths() string   { return l.accessPaths }

// LoadAudio decodes every eligible document of docs in place, setting Blob
// and Tags["sample_rate"].
//
// Documents are handled grouped by audio type, in the configured type
// order, and in traversal order within a group. The first decode error
// stops the call: documents already handled keep their buffers, the rest
// are left untouched. ctx is checked between documents only.
func (l *Loader) LoadAudio(ctx context.Context, docs docarray.DocumentArray, params Parameters) error {
	accessPaths := l.accessPaths
	if v, ok := params[AccessPathsParam]; ok && v != nil {
		s, err := cast.ToStringE(v)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", AccessPathsParam)
		}
		accessPaths = s
	}

	flat, err := docs.TraverseFlat(accessPaths)
	if err != nil {
		return errors.WithStack(err)
	}

	for i, group := range l.selectByType(flat) {
		for _, doc := range group {
			if err := ctx.Err(); err != nil {
				return err
			}

			blob, rate, err := l.decode(doc.URI, l.targetSampleRate)
			if err != nil {
				return errors.Wrapf(err, "load %s audio for document %s from %s", l.audioTypes[i], doc.ID, doc.URI)
			}

			doc.Blob = blob
			doc.SetTag(SampleRateTag, rate)

			l.logger.Debug("audio loaded",
				zap.String("id", doc.ID),
				zap.String("uri", doc.URI),
				zap.Int("samples", len(blob)),
				zap.Int("sample_rate", rate),
			)
		}
	}

	return nil
}

// selectByType buckets flat by configured audio type in a single pass.
// Buckets follow l.audioTypes order.
func (l *Loader) selectByType(flat []*docarray.Document) [][]*docarray.Document {
	groups := make([][]*docarray.Document, len(l.audioTypes))
	for _, doc := range flat {
		if doc.URI == "" {
			continue
		}
		for i, t := range l.audioTypes {
			if acceptsMime(t, doc.MimeType) {
				groups[i] = append(groups[i], doc)
			}
		}
	}

	return groups
}
