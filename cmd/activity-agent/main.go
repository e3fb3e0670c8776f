package main

import (
	"os"

	"Mansoor88-6/activity-agent/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
