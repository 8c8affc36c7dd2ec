package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/datadeps/cmd/datadeps"
)

func main() {
	rootCmd := datadeps.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
