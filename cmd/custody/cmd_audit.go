package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/config"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Replay the local audit log",
	Long: `Prints every recorded workflow action, across all runs, in the order it
was written. The audit log is append-only and local; evidence reports
remain the authoritative chain-of-custody artifacts.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	count := 0
	err = auditlog.Replay(cfg.AuditLogDir(), func(entry *auditlog.Entry) error {
		count++
		line := fmt.Sprintf("%s  %-18s %s",
			entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Type, entry.SubjectID)
		if entry.Error != "" {
			line += "  error: " + entry.Error
		}
		fmt.Println(line)
		return nil
	})
	if err != nil {
		return err
	}

	if count == 0 {
		fmt.Println("No audit entries recorded")
	}
	return nil
}
