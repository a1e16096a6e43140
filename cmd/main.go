package main

import (
	"os"

	"github.com/soundprediction/biograph/cmd/biograph"
)

func main() {
	if err := biograph.Execute(); err != nil {
		os.Exit(1)
	}
}
