package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logankimmel/tpcf-automation/pkg/capi"
	"github.com/logankimmel/tpcf-automation/pkg/pagination"
	"github.com/logankimmel/tpcf-automation/pkg/report"
)

var usageSummaryCmd = &cobra.Command{
	Use:   "usage-summary",
	Short: "Print per-organization and total app and service instance counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		c, err := newPlatformClient(cfg)
		if err != nil {
			return err
		}
		if err := c.VerifyTarget(ctx); err != nil {
			return err
		}

		pager := capi.NewPager(c, cfg.PageSize)
		raw, err := pagination.FetchAll(ctx, pager, capi.EndpointOrganizations)
		if err != nil {
			return fmt.Errorf("fetching organizations: %w", err)
		}
		orgs, err := pagination.DecodeAll[capi.Organization](raw)
		if err != nil {
			return fmt.Errorf("decoding organizations: %w", err)
		}
		logger.Info().Int("organizations", len(orgs)).Msg("Fetched organizations")

		summary := report.BuildUsageReport(ctx, orgs,
			func(ctx context.Context, orgGUID string) (*capi.UsageSummary, error) {
				return capi.FetchUsageSummary(ctx, c, orgGUID)
			}, logger)

		if summary.Skipped > 0 {
			logger.Warn().Int("skipped", summary.Skipped).Msg("Some organizations were skipped")
		}
		return summary.Write(os.Stdout)
	},
}
