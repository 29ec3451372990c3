package main

import (
	"os"

	"github.com/floai/flo-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
