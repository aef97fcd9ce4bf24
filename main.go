package main

import (
	"os"
	"vincit.fi/photo-frame/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
