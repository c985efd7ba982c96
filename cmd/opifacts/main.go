package main

import (
	"os"

	"github.com/abenaws/opifacts/cmd/opifacts/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
