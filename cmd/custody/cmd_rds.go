package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	awsprovider "github.com/nimbusdfir/custody/providers/aws"
	"github.com/nimbusdfir/custody/report"
	"github.com/nimbusdfir/custody/types"
	"github.com/nimbusdfir/custody/workflow"
)

var (
	flagRDSCase   string
	flagRDSReason string
)

var rdsCmd = &cobra.Command{
	Use:   "rds",
	Short: "Preserve RDS database evidence",
}

var rdsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List DB instances in the region",
	Args:  cobra.NoArgs,
	RunE:  runRDSList,
}

var rdsSnapshotCmd = &cobra.Command{
	Use:   "snapshot <db-instance-id>",
	Short: "Create a tagged evidence snapshot of a DB instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runRDSSnapshot,
}

func init() {
	rdsSnapshotCmd.Flags().StringVar(&flagRDSCase, "case", "", "case/incident number for snapshot tags")
	rdsSnapshotCmd.Flags().StringVar(&flagRDSReason, "reason", "", "preservation reason (default: "+workflow.DefaultPreservationReason+")")
	rdsCmd.AddCommand(rdsListCmd, rdsSnapshotCmd)
	rootCmd.AddCommand(rdsCmd)
}

func runRDSList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "rds")
	if err != nil {
		return err
	}
	defer app.Close()

	client := awsprovider.NewRDSClient(app.awsCfg)
	instances, err := client.ListDBInstances(ctx)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		fmt.Println("\nNo DB instances in region")
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTIFIER\tENGINE\tSTATUS\tENDPOINT\tCREATED")
	for _, db := range instances {
		endpoint := "-"
		if db.Endpoint != "" {
			endpoint = fmt.Sprintf("%s:%d", db.Endpoint, db.Port)
		}
		created := "-"
		if !db.CreatedAt.IsZero() {
			created = humanize.Time(db.CreatedAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", db.Identifier, db.Engine, db.Status, endpoint, created)
	}
	return w.Flush()
}

func runRDSSnapshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dbInstanceID := args[0]

	app, err := newApp(ctx, "rds")
	if err != nil {
		return err
	}
	defer app.Close()

	reason := flagRDSReason
	if reason == "" {
		reason = workflow.DefaultPreservationReason
	}

	snapshotID := fmt.Sprintf("evidence-%s-%s", dbInstanceID, time.Now().Format("2006-01-02-150405"))
	tags := map[string]string{
		"Name":           fmt.Sprintf("Evidence-%s", dbInstanceID),
		"SourceInstance": dbInstanceID,
		"EvidenceType":   "DigitalForensics",
		"CreatedBy":      report.Operator(),
		"CreationReason": reason,
	}
	if flagRDSCase != "" {
		tags["CaseNumber"] = flagRDSCase
	}

	client := awsprovider.NewRDSClient(app.awsCfg)
	snapshot, err := client.CreateEvidenceSnapshot(ctx, dbInstanceID, snapshotID, tags)
	if err != nil {
		return err
	}
	fmt.Printf("\nDB snapshot created: %s (%s)\n", snapshot.Identifier, snapshot.Status)

	details := &types.EvidenceDetails{}
	caseValue := flagRDSCase
	if caseValue == "" {
		caseValue = "Not specified"
	}
	details.Add("Case Number", caseValue)
	details.Add("Preservation Reason", reason)
	details.Add("DB Snapshot ID", snapshot.Identifier)
	details.Add("Source DB Instance", snapshot.Instance)
	details.Add("Snapshot Status", snapshot.Status)

	reportPath, err := app.reporter.Write(dbInstanceID, types.ActionRDSSnapshot, details)
	if err != nil {
		return fmt.Errorf("snapshot created but report failed: %w", err)
	}
	fmt.Printf("Evidence report: %s\n", reportPath)
	return nil
}
