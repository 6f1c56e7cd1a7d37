package main

import "github.com/awnumar/memguard"

func main() {
	// Wipe locked key buffers on Ctrl-C and on exit.
	memguard.CatchInterrupt()
	memguard.SafeExit(execute())
}
