// Package sensor defines the triaxial acceleration source consumed by the
// monitor loop, plus sources for simulation and replay of recorded sessions.
// Physical accelerometer integrations implement Source on the host side.
package sensor

// Source provides triaxial acceleration readings. Read is polled once per
// sampling-gate pass and must not block.
type Source interface {
	Read() (x, y, z float64, err error)
}
