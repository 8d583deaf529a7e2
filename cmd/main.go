package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dyike/GammaPulse/internal/cli"
)

func main() {
	// Execute the root command
	rootCmd := cli.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}
