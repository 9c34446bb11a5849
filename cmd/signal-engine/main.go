package main

import (
	"os"

	"signal-engine/cmd/signal-engine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
