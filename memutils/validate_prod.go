//go:build !debug_kiln

package memutils

// DebugEnabled is true when the debug_kiln build tag is present
const DebugEnabled = false

// DebugValidate calls Validate on the provided object and panics if it returns an error.
// This method no-ops unless the debug_kiln build tag is present.
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 verifies that value is a power of two, and panics if it is not.
// This method no-ops unless the debug_kiln build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
}
