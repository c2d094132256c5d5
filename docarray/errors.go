// SPDX-License-Identifier: EPL-2.0

package docarray

import "errors"

var ErrInvalidAccessPath = errors.New("invalid access path")
