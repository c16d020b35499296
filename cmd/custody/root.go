package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbusdfir/custody/config"
	"github.com/nimbusdfir/custody/workflow"
)

var (
	flagConfig    string
	flagRegion    string
	flagReportDir string
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   "custody",
	Short: "AWS incident response and evidence preservation",
	Long: `custody isolates compromised EC2 instances, preserves EBS volumes as
evidence snapshots, and documents every action in chain-of-custody reports.

Destructive operations require explicit confirmation and are recorded in an
append-only audit log before they execute.`,
	Version:       "0.2.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "", "AWS region (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagReportDir, "report-dir", "", "evidence report directory (default: ~/Downloads)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

// Execute runs the root command. Operator cancellation is a clean exit;
// everything else that fails exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, workflow.ErrCancelled) {
			fmt.Println("\nOperation cancelled by user")
			os.Exit(0)
		}
		if errors.Is(err, workflow.ErrNoneAvailable) {
			fmt.Printf("\n%v\n", err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
