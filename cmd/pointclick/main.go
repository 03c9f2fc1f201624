package main

import (
	"os"

	"github.com/AaronLay10/pointclick/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(migrations()).Execute(); err != nil {
		os.Exit(1)
	}
}
