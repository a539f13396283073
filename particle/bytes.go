package particle

import "unsafe"

// particlePtr views the front of a record as the fixed header. Records
// are allocated from one backing array, so the alias stays valid for the
// buffer's lifetime.
func particlePtr(rec []byte) unsafe.Pointer {
	return unsafe.Pointer(&rec[0])
}
