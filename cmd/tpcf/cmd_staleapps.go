package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/logankimmel/tpcf-automation/pkg/capi"
	"github.com/logankimmel/tpcf-automation/pkg/pagination"
	"github.com/logankimmel/tpcf-automation/pkg/report"
)

var (
	staleOutputPath string
	staleDaysFlag   int
)

var staleAppsCmd = &cobra.Command{
	Use:   "stale-apps",
	Short: "Export applications not updated since the cutoff as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		days := cfg.StaleAfterDays
		if staleDaysFlag > 0 {
			days = staleDaysFlag
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -days)

		c, err := newPlatformClient(cfg)
		if err != nil {
			return err
		}
		if err := c.VerifyTarget(ctx); err != nil {
			return err
		}

		pager := capi.NewPager(c, cfg.PageSize)
		collections, err := pagination.FetchCollections(ctx, pager, []string{
			capi.EndpointApps,
			capi.EndpointSpaces,
			capi.EndpointOrganizations,
		})
		if err != nil {
			return fmt.Errorf("fetching collections: %w", err)
		}

		apps, err := pagination.DecodeAll[capi.App](collections[capi.EndpointApps])
		if err != nil {
			return fmt.Errorf("decoding applications: %w", err)
		}
		spaces, err := pagination.DecodeAll[capi.Space](collections[capi.EndpointSpaces])
		if err != nil {
			return fmt.Errorf("decoding spaces: %w", err)
		}
		orgs, err := pagination.DecodeAll[capi.Organization](collections[capi.EndpointOrganizations])
		if err != nil {
			return fmt.Errorf("decoding organizations: %w", err)
		}
		logger.Info().
			Int("apps", len(apps)).
			Int("spaces", len(spaces)).
			Int("organizations", len(orgs)).
			Time("cutoff", cutoff).
			Msg("Fetched collections")

		rows, err := report.BuildStaleAppRows(apps, spaces, orgs, cutoff, joinOptions(cfg)...)
		if err != nil {
			return err
		}

		out, err := os.Create(staleOutputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()

		if err := report.WriteCSV(out, rows); err != nil {
			return err
		}
		logger.Info().Int("rows", len(rows)).Str("output", staleOutputPath).Msg("Wrote stale app report")
		return nil
	},
}

func init() {
	staleAppsCmd.Flags().StringVarP(&staleOutputPath, "output", "o", "", "path of the CSV file to write (required)")
	staleAppsCmd.Flags().IntVar(&staleDaysFlag, "days", 0, "override the configured staleness cutoff in days")
	_ = staleAppsCmd.MarkFlagRequired("output")
}
