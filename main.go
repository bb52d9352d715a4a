package main

import (
	"os"

	"github.com/akhkim/babel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
