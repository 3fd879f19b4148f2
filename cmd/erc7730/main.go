// Command erc7730 loads clear signing descriptor files, resolves them and
// converts them to wallet artifact formats.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
