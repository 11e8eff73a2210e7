//go:build !android

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "chordharp-mobile runs on android; build it with gomobile, or use `chordharp play` on the desktop")
	os.Exit(1)
}
