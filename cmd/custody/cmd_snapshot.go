package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nimbusdfir/custody/workflow"
)

var (
	flagSnapshotCase   string
	flagSnapshotReason string
	flagSnapshotWait   bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Create, list, and delete evidence snapshots",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create [instance-id]",
	Short: "Snapshot every EBS volume attached to an instance",
	Long: `Creates one evidence snapshot per attached volume, tagged with the case
number, operator, and preservation reason, and writes a chain-of-custody
report. A volume whose snapshot fails is skipped; the rest are still
preserved. With --wait the command blocks until every snapshot completes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotCreate,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots owned by this account",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete [snapshot-id]",
	Short: "Delete an evidence snapshot (requires reason and double confirmation)",
	Long: `Deletes a snapshot after a mandatory reason and two confirmations. The
deletion report is written before the delete call, so the record exists
even if the deletion itself fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotDelete,
}

func init() {
	snapshotCreateCmd.Flags().StringVar(&flagSnapshotCase, "case", "", "case/incident number for snapshot tags")
	snapshotCreateCmd.Flags().StringVar(&flagSnapshotReason, "reason", "", "preservation reason (default: "+workflow.DefaultPreservationReason+")")
	snapshotCreateCmd.Flags().BoolVar(&flagSnapshotWait, "wait", false, "wait for snapshots to complete")
	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotListCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "snapshot")
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.openState(); err != nil {
		return err
	}

	req := workflow.SnapshotRequest{
		CaseNumber: flagSnapshotCase,
		Reason:     flagSnapshotReason,
	}
	if len(args) > 0 {
		req.InstanceID = args[0]
	}

	snap := app.snapshotWorkflow()
	if req.CaseNumber == "" && req.Reason == "" {
		req.CaseNumber, req.Reason, err = snap.PromptCaseDetails()
		if err != nil {
			return err
		}
	}

	result, err := snap.Run(ctx, req)
	if err != nil {
		return err
	}

	if flagSnapshotWait {
		ids := make([]string, 0, len(result.Snapshots))
		for _, s := range result.Snapshots {
			ids = append(ids, s.ID)
		}
		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = fmt.Sprintf(" Waiting for %d snapshot(s) to complete...", len(ids))
		sp.Start()
		err = app.provider.WaitSnapshotCompleted(ctx, ids)
		sp.Stop()
		if err != nil {
			return err
		}
		fmt.Println("All snapshots completed")
	}
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "snapshot")
	if err != nil {
		return err
	}
	defer app.Close()

	snapshots, err := app.provider.ListSnapshots(ctx)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("\nNo snapshots in account")
		return nil
	}

	fmt.Printf("\nSnapshots owned by account %s:\n", app.identity.Account)
	for _, snapshot := range snapshots {
		fmt.Printf("  %s  %3dGB  %-10s  %s  %s\n",
			snapshot.ID, snapshot.SizeGB, snapshot.State,
			humanize.Time(snapshot.StartTime), snapshot.Description)
	}
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "snapshot")
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.openState(); err != nil {
		return err
	}

	snapshotID := ""
	if len(args) > 0 {
		snapshotID = args[0]
	}

	del := &workflow.DeletionWorkflow{
		Provider: app.provider,
		Selector: &workflow.SnapshotSelector{
			Provider: app.provider,
			Prompter: app.prompter,
			Out:      os.Stdout,
		},
		Audit:    app.audit,
		Reporter: app.reporter,
		Prompter: app.prompter,
		Logger:   app.logger,
		Out:      os.Stdout,
	}

	_, err = del.Run(ctx, snapshotID)
	return err
}
