// Command radex reconstructs EISCAT KST experiment timings from radar
// controller programs and console scripts.
package main

import (
	"os"

	"github.com/kstlab/radex/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
