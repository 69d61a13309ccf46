//go:build linux || darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

var interrupts = []os.Signal{
	os.Interrupt,
	unix.SIGTERM,
}
