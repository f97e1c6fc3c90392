package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is wrapped by CheckPow2 when an alignment or block size is not a power of two.
// Callers match it with errors.Is.
var PowerOfTwoError = errors.New("value must be a power of two")
