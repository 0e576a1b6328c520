// Command blynkctl is a small diagnostic client exercising the blynk
// package's public API from a terminal, the way cli/cli.go gave the
// teacher a runnable entry point for its own module.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "blynkctl",
		Short:         "Diagnostic client for the Blynk-family control protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := newGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		connectCmd(flags),
		sendCmd(flags),
		watchCmd(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "blynkctl: %v\n", err)
		os.Exit(1)
	}
}
