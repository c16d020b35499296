package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nimbusdfir/custody/types"
)

var (
	flagInstanceAMI    string
	flagInstanceType   string
	flagInstanceKey    string
	flagInstanceSG     string
	flagInstanceSubnet string
	flagInstanceName   string
	flagInstanceWait   bool
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage EC2 instances",
}

var instanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances in the region",
	Args:  cobra.NoArgs,
	RunE:  runInstanceList,
}

var instanceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Launch an instance (e.g. a forensic workstation)",
	Args:  cobra.NoArgs,
	RunE:  runInstanceCreate,
}

var instanceStartCmd = &cobra.Command{
	Use:   "start <instance-id>",
	Short: "Start a stopped instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstanceStart,
}

var instanceStopCmd = &cobra.Command{
	Use:   "stop <instance-id>",
	Short: "Stop a running instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstanceStop,
}

var instanceTerminateCmd = &cobra.Command{
	Use:   "terminate <instance-id>",
	Short: "Terminate an instance (requires confirmation)",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstanceTerminate,
}

func init() {
	instanceCreateCmd.Flags().StringVar(&flagInstanceAMI, "ami", "", "AMI id (required)")
	instanceCreateCmd.Flags().StringVar(&flagInstanceType, "type", "t3.micro", "instance type")
	instanceCreateCmd.Flags().StringVar(&flagInstanceKey, "key", "", "key pair name")
	instanceCreateCmd.Flags().StringVar(&flagInstanceSG, "security-group", "", "security group id")
	instanceCreateCmd.Flags().StringVar(&flagInstanceSubnet, "subnet", "", "subnet id")
	instanceCreateCmd.Flags().StringVar(&flagInstanceName, "name", "", "Name tag")
	instanceCreateCmd.Flags().BoolVar(&flagInstanceWait, "wait", false, "wait for the instance to be running")
	_ = instanceCreateCmd.MarkFlagRequired("ami")

	instanceCmd.AddCommand(instanceListCmd, instanceCreateCmd, instanceStartCmd, instanceStopCmd, instanceTerminateCmd)
	rootCmd.AddCommand(instanceCmd)
}

func runInstanceList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "instance")
	if err != nil {
		return err
	}
	defer app.Close()

	instances, err := app.provider.ListInstances(ctx)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		fmt.Println("\nNo instances in region")
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INSTANCE ID\tNAME\tSTATE\tTYPE\tAZ\tLAUNCHED\tGROUPS")
	for _, instance := range instances {
		name := instance.Name
		if name == "" {
			name = "-"
		}
		launched := "-"
		if !instance.LaunchTime.IsZero() {
			launched = humanize.Time(instance.LaunchTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			instance.ID, name, instance.State, instance.Type,
			instance.AvailabilityZone, launched,
			strings.Join(instance.SecurityGroupIDs(), ","))
	}
	return w.Flush()
}

func runInstanceCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "instance")
	if err != nil {
		return err
	}
	defer app.Close()

	instance, err := app.provider.RunInstance(ctx, types.InstanceSpec{
		ImageID:         flagInstanceAMI,
		InstanceType:    flagInstanceType,
		KeyName:         flagInstanceKey,
		SecurityGroupID: flagInstanceSG,
		SubnetID:        flagInstanceSubnet,
		Name:            flagInstanceName,
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nLaunched instance %s (%s)\n", instance.ID, instance.Type)

	if flagInstanceWait {
		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " Waiting for instance to be running..."
		sp.Start()
		err = app.provider.WaitInstanceRunning(ctx, instance.ID)
		sp.Stop()
		if err != nil {
			return err
		}
		fmt.Printf("Instance %s is running\n", instance.ID)
	}
	return nil
}

func runInstanceStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "instance")
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.provider.StartInstance(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("\nStart requested for %s\n", args[0])
	return nil
}

func runInstanceStop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "instance")
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.provider.StopInstance(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("\nStop requested for %s\n", args[0])
	return nil
}

func runInstanceTerminate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "instance")
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("\nWARNING: terminating %s destroys its instance store and cannot be undone.\n", args[0])
	answer, err := app.prompter.Input("Type 'yes' to terminate: ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "yes") {
		fmt.Println("Termination cancelled")
		return nil
	}

	if err := app.provider.TerminateInstance(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Termination requested for %s\n", args[0])
	return nil
}
