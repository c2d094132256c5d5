// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"strings"
)

// Quality selects the resampling engine used by ReadAll.
type Quality int

const (
	// QualityCubic uses Resampler. It is the default.
	QualityCubic Quality = iota
	// QualityHigh uses SincResampler.
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityCubic:
		return "cubic"
	case QualityHigh:
		return "high"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ParseQuality maps "cubic" and "high" to a Quality. An empty string is
// QualityCubic.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cubic":
		return QualityCubic, nil
	case "high", "sinc":
		return QualityHigh, nil
	}

	return QualityCubic, fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

// DefaultBufSize is the read chunk used when ReadAll is given a
// non-positive size.
const DefaultBufSize = 4096

// ReadAll drains src into a single mono buffer at targetRate.
//
// The pipeline is src -> MonoMixer -> resampler, so resampling runs on one
// channel only. When src already runs at targetRate no resampler is
// inserted. The returned rate is always targetRate.
func ReadAll(src Source, targetRate int, quality Quality, bufSize int) ([]float32, int, error) {
	if targetRate <= 0 {
		return nil, 0, ErrInvalidRate
	}
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	var pipeline Source = NewMonoMixer(src)
	if pipeline.SampleRate() != targetRate {
		switch quality {
		case QualityHigh:
			sinc, err := NewSincResampler(pipeline, targetRate)
			if err != nil {
				return nil, targetRate, err
			}
			pipeline = sinc
		case QualityCubic:
			pipeline = NewResampler(pipeline, targetRate)
		default:
			return nil, targetRate, fmt.Errorf("%w: %s", ErrUnknownQuality, quality)
		}
	}

	// Estimate the output length from the source buffer hint so short
	// clips do not reallocate.
	out := make([]float32, 0, max(bufSize, pipeline.BufSize()))
	buf := make([]float32, bufSize)

	for {
		n, err := pipeline.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	return out, targetRate, nil
}
