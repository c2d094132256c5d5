// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("unknown audio container")
	ErrShortHeader    = errors.New("header too short to detect format")
	ErrInvalidRate    = errors.New("sample rate must be positive")
	ErrUnknownQuality = errors.New("unknown resample quality")
)
