package main

import (
	"os"

	"kbqa/cmd/kbqa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
