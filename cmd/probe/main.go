// Command probe checks the health endpoint of a running server and exits
// non-zero when it is not healthy. It is meant for container HEALTHCHECK
// instructions in images that ship without curl.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
