package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbusdfir/custody/config"
	"github.com/nimbusdfir/custody/workflow"
)

var isolateCmd = &cobra.Command{
	Use:   "isolate [instance-id]",
	Short: "Quarantine an instance by replacing its security groups",
	Long: `Replaces every security group on the instance with the quarantine group,
which permits no ingress and no egress. The original group membership is
saved to the recovery store first, so 'custody restore' can undo the
isolation. Offers a follow-up evidence snapshot once isolation completes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIsolate,
}

func init() {
	rootCmd.AddCommand(isolateCmd)
}

func runIsolate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "isolate")
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.openState(); err != nil {
		return err
	}

	instanceID := ""
	if len(args) > 0 {
		instanceID = args[0]
	}

	iso := &workflow.IsolationWorkflow{
		Provider: app.provider,
		Quarantine: &workflow.QuarantineManager{
			Provider:    app.provider,
			GroupName:   app.cfg.QuarantineGroup,
			Description: config.DefaultQuarantineGroupDescription,
			Logger:      app.logger,
		},
		Selector:  app.instanceSelector(),
		Recovery:  app.recovery,
		Audit:     app.audit,
		Reporter:  app.reporter,
		Prompter:  app.prompter,
		Snapshots: app.snapshotWorkflow(),
		Logger:    app.logger,
		Out:       os.Stdout,
	}

	_, err = iso.Run(ctx, instanceID)
	return err
}
