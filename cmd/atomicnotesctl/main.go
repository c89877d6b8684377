// Command atomicnotesctl manages atomic notes straight in the configured
// storage, without going through the site.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal()
	}
}

// fatal exits with a failure code. Cobra has already printed the error.
func fatal() {
	os.Exit(1)
}
