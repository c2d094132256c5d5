// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
	ErrMissingFormatChunk  = errors.New("WAV file has no usable fmt chunk")
)
