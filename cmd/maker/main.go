// Command maker solves the Tower of Hanoi one voted model call at a time.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/felixgeelhaar/maker-go/interfaces/cli"
)

func main() {
	if err := cli.New().Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
