// Package power drives the relay supplying the field computer.
package power

// Switch asserts or removes power to the device. Implementations must be
// safe to call repeatedly with the same state.
type Switch interface {
	On() error
	Off() error
}
