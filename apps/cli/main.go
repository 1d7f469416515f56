// Command repoprovas is the terminal client of the archive: it browses the tests by discipline or by
// teacher, opens them and submits new ones.
package main

import (
	"fmt"
	"os"
)

func main() {
	cli := &commandLine{}
	if err := cli.rootCmd().Execute(); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
