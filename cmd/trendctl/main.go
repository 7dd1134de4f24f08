// Command trendctl runs the bulk maintenance operations against the database
// directly: export, import and cleanup.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
