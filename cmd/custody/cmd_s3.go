package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	awsprovider "github.com/nimbusdfir/custody/providers/aws"
)

var (
	flagS3Objects bool
	flagS3Output  string
)

var s3Cmd = &cobra.Command{
	Use:   "s3",
	Short: "Collect S3 evidence",
}

var s3EvidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Capture the configuration of every bucket as JSON evidence",
	Long: `Collects location, ACL, public access block, policy, versioning,
encryption, logging, and lifecycle configuration for every bucket in the
account and writes the result to a timestamped JSON file. Calls the
caller is not permitted to make are recorded as errors in the output
instead of aborting the collection.`,
	Args: cobra.NoArgs,
	RunE: runS3Evidence,
}

func init() {
	s3EvidenceCmd.Flags().BoolVar(&flagS3Objects, "objects", false, "include object counts and sizes (slow on large buckets)")
	s3EvidenceCmd.Flags().StringVar(&flagS3Output, "output", "", "output directory (default: report directory)")
	s3Cmd.AddCommand(s3EvidenceCmd)
	rootCmd.AddCommand(s3Cmd)
}

func runS3Evidence(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newApp(ctx, "s3")
	if err != nil {
		return err
	}
	defer app.Close()

	client := awsprovider.NewS3EvidenceClient(app.awsCfg)

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " Collecting bucket evidence..."
	sp.Start()
	evidence, err := client.CollectBucketEvidence(ctx, flagS3Objects)
	sp.Stop()
	if err != nil {
		return err
	}

	dir := flagS3Output
	if dir == "" {
		dir = app.cfg.ReportDir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("s3-bucket-evidence-%s.json", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(evidence, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bucket evidence: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- evidence file is operator-readable
		return fmt.Errorf("failed to write bucket evidence: %w", err)
	}

	fmt.Printf("\nCollected evidence for %d bucket(s)\n", len(evidence))
	fmt.Printf("Evidence file: %s\n", path)
	return nil
}
