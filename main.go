package main

import (
	"os"

	"github.com/marcoskids/marcos/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
