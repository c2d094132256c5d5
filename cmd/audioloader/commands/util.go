// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"

	"github.com/spf13/cast"
)

func toRate(v any) (int, error) {
	rate, err := cast.ToIntE(v)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("invalid sample rate tag %v", v)
	}

	return rate, nil
}
