package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbusdfir/custody/workflow"
)

var flagRestoreList bool

var restoreCmd = &cobra.Command{
	Use:   "restore <instance-id>",
	Short: "Restore an isolated instance's original security groups",
	Long: `Reapplies the security group membership saved when the instance was
isolated, then removes the recovery record. Use --list to see which
instances have recovery records.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&flagRestoreList, "list", false, "list saved recovery records")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "restore")
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.openState(); err != nil {
		return err
	}

	if flagRestoreList {
		records, err := app.recovery.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("\nNo recovery records saved")
			return nil
		}
		fmt.Println("\nSaved recovery records:")
		for _, record := range records {
			fmt.Printf("  %s  isolated %s by %s  (%d original groups)\n",
				record.InstanceID,
				record.SavedAt.Format("2006-01-02 15:04:05 UTC"),
				record.Operator,
				len(record.GroupIDs))
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("instance id required (or --list to see recovery records)")
	}

	restore := &workflow.RestoreWorkflow{
		Provider: app.provider,
		Recovery: app.recovery,
		Audit:    app.audit,
		Reporter: app.reporter,
		Prompter: app.prompter,
		Logger:   app.logger,
		Out:      os.Stdout,
	}

	_, err = restore.Run(ctx, args[0])
	return err
}
