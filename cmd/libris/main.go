package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// errInterrupted marks an ingestion run stopped by SIGINT/SIGTERM.
var errInterrupted = errors.New("interrupted")

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInterrupted), errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
