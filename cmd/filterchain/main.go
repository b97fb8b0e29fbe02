// filterchain runs text through a composable, priority-ordered chain of
// value filters.
package main

import (
	"os"

	"github.com/hupe1980/filterchain/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
