// Package capi binds Cloud Controller v3 payloads and adapts the
// client to the pagination.PageFetcher seam.
package capi

import (
	"encoding/json"
)

// Collection endpoints used by the reports.
const (
	EndpointOrganizations = "/v3/organizations"
	EndpointSpaces        = "/v3/spaces"
	EndpointApps          = "/v3/apps"
)

// Envelope is the v3 paginated collection wrapper.
type Envelope struct {
	Pagination Pagination        `json:"pagination"`
	Resources  []json.RawMessage `json:"resources"`
}

// Pagination is the envelope's traversal block.
type Pagination struct {
	TotalResults int   `json:"total_results"`
	TotalPages   int   `json:"total_pages"`
	First        Link  `json:"first"`
	Last         Link  `json:"last"`
	Next         *Link `json:"next"`
	Previous     *Link `json:"previous"`
}

// Link is an href wrapper as the v3 API emits it.
type Link struct {
	Href string `json:"href"`
}

// Relationship references another resource by GUID. Data is null when
// the relationship is unset.
type Relationship struct {
	Data *RelationshipData `json:"data"`
}

// RelationshipData carries the referenced GUID.
type RelationshipData struct {
	GUID string `json:"guid"`
}

// GUID returns the referenced GUID, or "" when the relationship is unset.
func (r Relationship) GUID() string {
	if r.Data == nil {
		return ""
	}
	return r.Data.GUID
}

// App is an application resource. Timestamps stay as raw strings;
// the aggregation layer parses them and owns the hard failure on a
// malformed value.
type App struct {
	GUID      string `json:"guid"`
	Name      string `json:"name"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	Relationships struct {
		Space Relationship `json:"space"`
	} `json:"relationships"`
}

// SpaceGUID returns the GUID of the app's space, "" when absent.
func (a App) SpaceGUID() string {
	return a.Relationships.Space.GUID()
}

// Space is a space resource.
type Space struct {
	GUID      string `json:"guid"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	Relationships struct {
		Organization Relationship `json:"organization"`
	} `json:"relationships"`
}

// OrgGUID returns the GUID of the space's organization, "" when absent.
func (s Space) OrgGUID() string {
	return s.Relationships.Organization.GUID()
}

// Organization is an organization resource.
type Organization struct {
	GUID      string `json:"guid"`
	Name      string `json:"name"`
	Suspended bool   `json:"suspended"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UsageSummary is the per-organization usage summary resource
// (GET /v3/organizations/{guid}/usage_summary). The counters are
// pointers because the platform omits them for quota-less orgs;
// aggregation treats nil as zero.
type UsageSummary struct {
	UsageSummary struct {
		StartedInstances *int `json:"started_instances"`
		ServiceInstances *int `json:"service_instances"`
		MemoryInMB       *int `json:"memory_in_mb"`
	} `json:"usage_summary"`
}

// AppInstances returns the started app instance counter, nil when absent.
func (u UsageSummary) AppInstances() *int {
	return u.UsageSummary.StartedInstances
}

// ServiceInstanceCount returns the service instance counter, nil when absent.
func (u UsageSummary) ServiceInstanceCount() *int {
	return u.UsageSummary.ServiceInstances
}
