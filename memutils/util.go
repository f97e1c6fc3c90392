package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~int32 | ~uint32 | ~int64 | ~uint64
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp[T Number](value T, alignment T) T {
	if alignment <= 1 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to the previous multiple of alignment, which must be a power of two
func AlignDown[T Number](value T, alignment T) T {
	if alignment <= 1 {
		return value
	}
	return value &^ (alignment - 1)
}

func IsAligned[T Number](value T, alignment T) bool {
	if alignment <= 1 {
		return true
	}
	return value&(alignment-1) == 0
}

// RangesOverlap reports whether [aOffset, aOffset+aSize) and [bOffset, bOffset+bSize) share any byte.
func RangesOverlap[T Number](aOffset, aSize, bOffset, bSize T) bool {
	if aSize == 0 || bSize == 0 {
		return false
	}
	return aOffset < bOffset+bSize && bOffset < aOffset+aSize
}
