// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding pipeline primitives used to turn an
// audio file into a mono float32 buffer.
//
// # Source Interface
//
// Every decoder in formats/ returns a Source, a pull based stream of
// interleaved float32 samples in [-1.0, 1.0]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns io.EOF once the stream is exhausted; it may return
// the last samples together with io.EOF.
//
// # Format Detection
//
// DetectFormat sniffs the container from the first HeaderSize bytes of a
// file and returns the key under which its decoder is registered:
//
//	format, err := audio.DetectFormat(header)
//	dec, ok := registry.Get(format)
//
// # Processing
//
// MonoMixer averages channels. Resampler changes the sample rate with
// cubic interpolation, SincResampler with a windowed sinc filter. ReadAll
// chains them and collects the whole stream:
//
//	samples, rate, err := audio.ReadAll(src, 22050, audio.QualityCubic, 4096)
package audio
