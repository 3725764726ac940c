package main

import (
	"os"

	"github.com/AnyUserName/blurtune/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
