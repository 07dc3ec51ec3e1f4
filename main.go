package main

import (
	"os"

	"github.com/kastheco/marquee/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
