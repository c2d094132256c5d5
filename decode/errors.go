// SPDX-License-Identifier: EPL-2.0

package decode

import "errors"

var (
	ErrEmptyURI          = errors.New("empty uri")
	ErrUnsupportedScheme = errors.New("unsupported uri scheme")
	ErrUnreadable        = errors.New("audio source is unreadable")
	ErrCorrupt           = errors.New("audio content cannot be decoded")
	ErrNoDecoder         = errors.New("no decoder registered")
)
