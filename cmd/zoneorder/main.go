// Command zoneorder recovers the reading order of document pages and writes
// the zone-ordered structure as JSON or YAML.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
