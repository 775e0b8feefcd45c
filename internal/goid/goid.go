// Package goid extracts the id of the calling goroutine.
//
// Goroutine ids are the logical execution-context identity used by the
// dispatch guard: unlike OS thread ids, they are stable for the life of the
// goroutine even as the runtime migrates it between threads.
package goid

import "runtime"

// stackPrefix is how every first-frame stack dump begins:
// "goroutine 123 [running]:".
const stackPrefix = "goroutine "

// ID returns the id of the calling goroutine.
func ID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := buf[len(stackPrefix):n]

	var id int64
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
