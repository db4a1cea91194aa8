// Package report turns fetched collections into the three operator
// reports: per-organization usage totals, the stale-application CSV,
// and the per-user group audit. Builders are pure folds over already
// fetched data; fetching stays behind small function seams so each
// report is testable without a live foundation.
package report

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/logankimmel/tpcf-automation/pkg/aggregate"
	"github.com/logankimmel/tpcf-automation/pkg/capi"
)

// SystemOrg is the platform-internal organization excluded from usage
// accounting. Its instances belong to the platform, not to tenants.
const SystemOrg = "system"

// UsageFetchFunc fetches the usage summary for one organization.
type UsageFetchFunc func(ctx context.Context, orgGUID string) (*capi.UsageSummary, error)

// OrgUsage is one organization's row in the usage report.
type OrgUsage struct {
	OrgName          string
	OrgGUID          string
	AppInstances     int
	ServiceInstances int
}

// UsageReport holds per-organization usage rows and their totals.
type UsageReport struct {
	Orgs                  []OrgUsage
	TotalAppInstances     int
	TotalServiceInstances int
	Skipped               int
}

// BuildUsageReport fetches each organization's usage summary and folds
// the rows into totals. The system organization is excluded. A failed
// per-organization fetch is logged as a warning and skipped; one
// broken organization must not sink the whole report.
func BuildUsageReport(ctx context.Context, orgs []capi.Organization, fetch UsageFetchFunc, logger zerolog.Logger) *UsageReport {
	rows := make([]OrgUsage, 0, len(orgs))
	summaries := make([]*capi.UsageSummary, 0, len(orgs))
	skipped := 0

	for _, org := range orgs {
		if org.Name == SystemOrg {
			logger.Debug().Str("org", org.Name).Msg("Skipping platform organization")
			continue
		}

		summary, err := fetch(ctx, org.GUID)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("org", org.Name).
				Str("org_guid", org.GUID).
				Msg("Failed to fetch usage summary, skipping organization")
			skipped++
			continue
		}

		summaries = append(summaries, summary)
		rows = append(rows, OrgUsage{
			OrgName:          org.Name,
			OrgGUID:          org.GUID,
			AppInstances:     zeroIfNil(summary.AppInstances()),
			ServiceInstances: zeroIfNil(summary.ServiceInstanceCount()),
		})
	}

	return &UsageReport{
		Orgs:                  rows,
		Skipped:               skipped,
		TotalAppInstances:     aggregate.Sum(summaries, (*capi.UsageSummary).AppInstances),
		TotalServiceInstances: aggregate.Sum(summaries, (*capi.UsageSummary).ServiceInstanceCount),
	}
}

func zeroIfNil(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// Write renders the report as an aligned console table.
func (r *UsageReport) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "ORG\tAIs\tSIs")
	for _, row := range r.Orgs {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", row.OrgName, row.AppInstances, row.ServiceInstances)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\n", r.TotalAppInstances, r.TotalServiceInstances)

	return tw.Flush()
}
