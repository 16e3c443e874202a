// Command wiredump prints the envelopes in a captured stream.
//
//	wiredump capture.bin
//	wiredump --raw < capture.bin
//	echo 0000...01 | wiredump --hex
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wiredump:", err)
		os.Exit(1)
	}
}
