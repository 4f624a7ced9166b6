package main

import (
	"context"
	"os"

	"github.com/ajschmidt2/bluebeam-consolidator/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
