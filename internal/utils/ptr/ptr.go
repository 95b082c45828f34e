// Package ptr provides helpers for optional values.
package ptr

// Int creates a pointer to the given int value.
func Int(i int) *int {
	return &i
}
