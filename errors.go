// SPDX-License-Identifier: EPL-2.0

package audioloader

import "errors"

var (
	ErrUnsupportedAudioType = errors.New("audio type not supported")
	ErrInvalidSampleRate    = errors.New("target sample rate must be positive")
)
