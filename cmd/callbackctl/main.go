// Command callbackctl is the operator tool of the payment callback service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "callbackctl",
		Short:        "Operate the payment callback service",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(orderCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(donateRateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
