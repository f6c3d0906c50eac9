package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func main() {
	bin, err := exec.LookPath("todocomb")
	if err != nil {
		fmt.Fprintln(os.Stderr, "tdc: todocomb not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"todocomb"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "tdc: %v\n", err)
		os.Exit(1)
	}
}
