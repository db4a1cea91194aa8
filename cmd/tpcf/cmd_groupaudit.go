package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logankimmel/tpcf-automation/pkg/pagination"
	"github.com/logankimmel/tpcf-automation/pkg/report"
	"github.com/logankimmel/tpcf-automation/pkg/uaa"
)

var groupAuditCmd = &cobra.Command{
	Use:   "group-audit",
	Short: "List every user's UAA groups with their descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		pager := uaa.NewPager(&uaa.ExecRunner{Path: cfg.UaacPath})

		users, err := pagination.FetchAll(ctx, pager, "users")
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}
		groups, err := pagination.FetchAll(ctx, pager, "groups")
		if err != nil {
			return fmt.Errorf("listing groups: %w", err)
		}
		logger.Info().Int("users", len(users)).Int("groups", len(groups)).Msg("Fetched identity listings")

		audit, err := report.BuildGroupReport(users, groups, joinOptions(cfg)...)
		if err != nil {
			return err
		}
		return report.WriteGroupReport(os.Stdout, audit)
	},
}
