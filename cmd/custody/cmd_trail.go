package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	awsprovider "github.com/nimbusdfir/custody/providers/aws"
)

var (
	flagTrailEventName string
	flagTrailSince     time.Duration
)

var trailCmd = &cobra.Command{
	Use:   "trail [resource-id]",
	Short: "Look up CloudTrail events for incident reconstruction",
	Long: `Queries CloudTrail for API calls touching a resource (or matching an
event name with --event-name) over a trailing window. Useful for
answering who modified an instance before it was isolated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrail,
}

func init() {
	trailCmd.Flags().StringVar(&flagTrailEventName, "event-name", "", "filter by API call name instead of resource")
	trailCmd.Flags().DurationVar(&flagTrailSince, "since", 24*time.Hour, "trailing lookup window")
	rootCmd.AddCommand(trailCmd)
}

func runTrail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "trail")
	if err != nil {
		return err
	}
	defer app.Close()

	if len(args) == 0 && flagTrailEventName == "" {
		return fmt.Errorf("a resource id or --event-name is required")
	}

	client := awsprovider.NewCloudTrailClient(app.awsCfg)

	var events []awsprovider.TrailEvent
	if len(args) > 0 {
		events, err = client.QueryResourceEvents(ctx, args[0], flagTrailSince)
	} else {
		events, err = client.QueryEventName(ctx, flagTrailEventName, flagTrailSince)
	}
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("\nNo events in the last %s\n", flagTrailSince)
		return nil
	}

	fmt.Printf("\n%d event(s) in the last %s:\n\n", len(events), flagTrailSince)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tUSER\tRESOURCE")
	for _, event := range events {
		resource := event.ResourceName
		if resource == "" {
			resource = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			event.EventTime.Format("2006-01-02 15:04:05"),
			event.EventName, event.Username, resource)
	}
	return w.Flush()
}
