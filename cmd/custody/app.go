package main

import (
	"context"
	"fmt"
	"os"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"

	"github.com/nimbusdfir/custody/auditlog"
	"github.com/nimbusdfir/custody/config"
	awsprovider "github.com/nimbusdfir/custody/providers/aws"
	"github.com/nimbusdfir/custody/recovery"
	"github.com/nimbusdfir/custody/report"
	"github.com/nimbusdfir/custody/telemetry"
	"github.com/nimbusdfir/custody/types"
	"github.com/nimbusdfir/custody/workflow"
)

// app wires configuration, credentials, and the shared collaborators every
// command needs. Commands that mutate cloud state call openState to get the
// recovery store and audit log on top.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	awsCfg   awssdk.Config
	provider *awsprovider.Provider
	identity *types.Identity
	reporter *report.Reporter
	prompter workflow.Prompter

	recovery *recovery.Store
	audit    *auditlog.Log
}

// newApp loads config, verifies AWS credentials, and announces the caller
// identity. Commands must not touch the cloud before this succeeds.
func newApp(ctx context.Context, component string) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagReportDir != "" {
		cfg.ReportDir = flagReportDir
	}

	logger := telemetry.NewLogger(component, flagDebug)

	awsCfg, err := awsprovider.LoadAWSConfig(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}
	provider := awsprovider.NewProviderFromConfig(awsCfg)

	identity, err := provider.VerifyIdentity(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Connected to AWS Account: %s\n", identity.Account)
	fmt.Printf("User/Role: %s\n", identity.ARN)
	fmt.Printf("Region: %s\n", cfg.Region)

	return &app{
		cfg:      cfg,
		logger:   logger,
		awsCfg:   awsCfg,
		provider: provider,
		identity: identity,
		reporter: report.NewReporter(cfg.ReportDir, cfg.Region),
		prompter: workflow.NewTerminalPrompter(os.Stdin, os.Stdout),
	}, nil
}

// openState opens the recovery store and a fresh audit log for this run.
func (a *app) openState() error {
	store, err := recovery.Open(a.cfg.RecoveryStorePath())
	if err != nil {
		return err
	}
	audit, err := auditlog.Open(a.cfg.AuditLogDir())
	if err != nil {
		_ = store.Close()
		return err
	}
	a.recovery = store
	a.audit = audit
	return nil
}

// Close releases whatever state the command opened.
func (a *app) Close() {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close audit log")
		}
	}
	if a.recovery != nil {
		if err := a.recovery.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close recovery store")
		}
	}
}

// instanceSelector builds the interactive instance picker.
func (a *app) instanceSelector() *workflow.InstanceSelector {
	return &workflow.InstanceSelector{
		Provider: a.provider,
		Prompter: a.prompter,
		Out:      os.Stdout,
	}
}

// snapshotWorkflow builds the evidence snapshot workflow.
func (a *app) snapshotWorkflow() *workflow.SnapshotWorkflow {
	return &workflow.SnapshotWorkflow{
		Provider: a.provider,
		Selector: a.instanceSelector(),
		Audit:    a.audit,
		Reporter: a.reporter,
		Prompter: a.prompter,
		Logger:   a.logger,
		Out:      os.Stdout,
	}
}
