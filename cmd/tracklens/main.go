package main

import (
	"fmt"
	"os"

	"github.com/ewilliams-labs/tracklens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tracklens:", err)
		os.Exit(1)
	}
}
