package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logankimmel/tpcf-automation/pkg/capi"
)

func intPtr(v int) *int { return &v }

func newSummary(appInstances, serviceInstances *int) *capi.UsageSummary {
	var s capi.UsageSummary
	s.UsageSummary.StartedInstances = appInstances
	s.UsageSummary.ServiceInstances = serviceInstances
	return &s
}

func summaryFetcher(summaries map[string]*capi.UsageSummary, errs map[string]error) UsageFetchFunc {
	return func(_ context.Context, orgGUID string) (*capi.UsageSummary, error) {
		if err, ok := errs[orgGUID]; ok {
			return nil, err
		}
		return summaries[orgGUID], nil
	}
}

func TestBuildUsageReport(t *testing.T) {
	orgs := []capi.Organization{
		{GUID: "org-1", Name: "finance"},
		{GUID: "org-2", Name: "engineering"},
	}
	fetch := summaryFetcher(map[string]*capi.UsageSummary{
		"org-1": newSummary(intPtr(5), intPtr(2)),
		"org-2": newSummary(intPtr(3), intPtr(7)),
	}, nil)

	report := BuildUsageReport(context.Background(), orgs, fetch, zerolog.Nop())

	require.Len(t, report.Orgs, 2)
	assert.Equal(t, 8, report.TotalAppInstances)
	assert.Equal(t, 9, report.TotalServiceInstances)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, "finance", report.Orgs[0].OrgName)
	assert.Equal(t, 5, report.Orgs[0].AppInstances)
}

func TestBuildUsageReport_ExcludesSystemOrg(t *testing.T) {
	orgs := []capi.Organization{
		{GUID: "org-sys", Name: "system"},
		{GUID: "org-1", Name: "finance"},
	}
	fetch := summaryFetcher(map[string]*capi.UsageSummary{
		"org-sys": newSummary(intPtr(100), intPtr(100)),
		"org-1":   newSummary(intPtr(5), intPtr(2)),
	}, nil)

	report := BuildUsageReport(context.Background(), orgs, fetch, zerolog.Nop())

	require.Len(t, report.Orgs, 1)
	assert.Equal(t, 5, report.TotalAppInstances)
	assert.Equal(t, 2, report.TotalServiceInstances)
}

func TestBuildUsageReport_OnlySystemOrg(t *testing.T) {
	orgs := []capi.Organization{{GUID: "org-sys", Name: "system"}}
	fetch := summaryFetcher(nil, nil)

	report := BuildUsageReport(context.Background(), orgs, fetch, zerolog.Nop())

	assert.Empty(t, report.Orgs)
	assert.Equal(t, 0, report.TotalAppInstances)
	assert.Equal(t, 0, report.TotalServiceInstances)
}

func TestBuildUsageReport_SkipsFailedOrg(t *testing.T) {
	orgs := []capi.Organization{
		{GUID: "org-1", Name: "finance"},
		{GUID: "org-2", Name: "engineering"},
	}
	fetch := summaryFetcher(map[string]*capi.UsageSummary{
		"org-2": newSummary(intPtr(3), intPtr(7)),
	}, map[string]error{
		"org-1": errors.New("upstream 502"),
	})

	report := BuildUsageReport(context.Background(), orgs, fetch, zerolog.Nop())

	require.Len(t, report.Orgs, 1)
	assert.Equal(t, "engineering", report.Orgs[0].OrgName)
	assert.Equal(t, 3, report.TotalAppInstances)
	assert.Equal(t, 1, report.Skipped)
}

func TestBuildUsageReport_NilCountersSumAsZero(t *testing.T) {
	orgs := []capi.Organization{
		{GUID: "org-1", Name: "finance"},
		{GUID: "org-2", Name: "engineering"},
	}
	fetch := summaryFetcher(map[string]*capi.UsageSummary{
		"org-1": newSummary(intPtr(5), nil),
		"org-2": newSummary(nil, intPtr(3)),
	}, nil)

	report := BuildUsageReport(context.Background(), orgs, fetch, zerolog.Nop())

	assert.Equal(t, 5, report.TotalAppInstances)
	assert.Equal(t, 3, report.TotalServiceInstances)
}

func TestUsageReport_Write(t *testing.T) {
	report := &UsageReport{
		Orgs: []OrgUsage{
			{OrgName: "finance", AppInstances: 5, ServiceInstances: 2},
		},
		TotalAppInstances:     5,
		TotalServiceInstances: 2,
	}

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "ORG")
	assert.Contains(t, out, "finance")
	assert.Contains(t, out, "TOTAL")
}
