package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/logankimmel/tpcf-automation/pkg/aggregate"
	"github.com/logankimmel/tpcf-automation/pkg/capi"
	"github.com/logankimmel/tpcf-automation/pkg/join"
)

// csvHeader is the stale-app CSV column order. Downstream tooling
// parses these columns by name; do not reorder.
var csvHeader = []string{"app_name", "updated_at", "created_at", "space_id", "space_name", "org_name", "org_guid"}

// StaleAppRow is one CSV row: an application joined through its space
// to its organization.
type StaleAppRow struct {
	AppName   string
	UpdatedAt string
	CreatedAt string
	SpaceID   string
	SpaceName string
	OrgName   string
	OrgGUID   string
}

type datedApp struct {
	app     capi.App
	updated time.Time
}

// BuildStaleAppRows joins each application to its space and
// organization, keeping only apps updated strictly before cutoff. An
// app exactly at the cutoff is not stale. A malformed timestamp fails
// the whole report; a silently wrong date comparison would be worse
// than no report. Unresolvable space or organization references
// produce the unresolved marker, never an abort.
func BuildStaleAppRows(apps []capi.App, spaces []capi.Space, orgs []capi.Organization, cutoff time.Time, opts ...join.Option) ([]StaleAppRow, error) {
	spaceLookup, err := join.BuildLookup(spaces, func(s capi.Space) string { return s.GUID }, opts...)
	if err != nil {
		return nil, fmt.Errorf("building space lookup: %w", err)
	}
	orgLookup, err := join.BuildLookup(orgs, func(o capi.Organization) string { return o.GUID }, opts...)
	if err != nil {
		return nil, fmt.Errorf("building organization lookup: %w", err)
	}

	dated := make([]datedApp, 0, len(apps))
	for _, app := range apps {
		updated, err := aggregate.ParseTimestamp("updated_at", app.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("app %s: %w", app.Name, err)
		}
		dated = append(dated, datedApp{app: app, updated: updated})
	}

	rows := aggregate.Collect(dated,
		func(d datedApp) bool { return aggregate.OlderThan(d.updated, cutoff) },
		func(d datedApp) StaleAppRow { return joinApp(d.app, spaceLookup, orgLookup) })

	return rows, nil
}

func joinApp(app capi.App, spaces *join.Lookup[capi.Space], orgs *join.Lookup[capi.Organization]) StaleAppRow {
	row := StaleAppRow{
		AppName:   app.Name,
		UpdatedAt: app.UpdatedAt,
		CreatedAt: app.CreatedAt,
		SpaceID:   app.SpaceGUID(),
		SpaceName: join.Unresolved,
		OrgName:   join.Unresolved,
		OrgGUID:   join.Unresolved,
	}
	if row.SpaceID == "" {
		row.SpaceID = join.Unresolved
		return row
	}

	space, ok := spaces.Resolve(row.SpaceID)
	if !ok {
		return row
	}
	row.SpaceName = space.Name

	org, ok := orgs.Resolve(space.OrgGUID())
	if !ok {
		return row
	}
	row.OrgName = org.Name
	row.OrgGUID = org.GUID
	return row
}

// WriteCSV writes rows with the fixed header. The header is written
// even when there are zero rows, so an empty report is still a valid
// CSV file.
func WriteCSV(w io.Writer, rows []StaleAppRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.AppName, row.UpdatedAt, row.CreatedAt, row.SpaceID, row.SpaceName, row.OrgName, row.OrgGUID}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", row.AppName, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
