// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it by 32767.
func Float32ToInt16(x float32) int16 {
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}

	return int16(x * 32767.0)
}

// IntToFloat32 scales a signed PCM integer of the given bit depth into
// [-1, 1). Unknown depths are treated as 16-bit.
func IntToFloat32(v int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(v) / 128.0
	case 24:
		return float32(v) / 8388608.0
	case 32:
		return float32(float64(v) / 2147483648.0)
	default:
		return float32(v) / 32768.0
	}
}
