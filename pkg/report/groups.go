package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/logankimmel/tpcf-automation/pkg/join"
	"github.com/logankimmel/tpcf-automation/pkg/pagination"
)

// stringList accepts both a bare string and an array. The identity CLI
// prints one membership per line, so a user with a single group parses
// as a string and a user with several parses as an array.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = stringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = stringList(many)
	return nil
}

type uaaUser struct {
	Username string     `json:"username"`
	Groups   stringList `json:"groups"`
}

type uaaGroup struct {
	DisplayName string `json:"displayname"`
	Description string `json:"description"`
}

// GroupMembership is one group a user belongs to.
type GroupMembership struct {
	Name        string
	Description string
}

// UserGroups lists one user's memberships with their descriptions.
type UserGroups struct {
	Username string
	Groups   []GroupMembership
}

// BuildGroupReport decodes the raw user and group listings and joins
// each user's memberships against the group descriptions. A membership
// naming a group without a listing entry keeps its name and gets the
// unresolved marker as its description. Users sort by name for stable
// output.
func BuildGroupReport(users, groups []json.RawMessage, opts ...join.Option) ([]UserGroups, error) {
	decodedUsers, err := pagination.DecodeAll[uaaUser](users)
	if err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	decodedGroups, err := pagination.DecodeAll[uaaGroup](groups)
	if err != nil {
		return nil, fmt.Errorf("decoding groups: %w", err)
	}

	groupLookup, err := join.BuildLookup(decodedGroups, func(g uaaGroup) string { return g.DisplayName }, opts...)
	if err != nil {
		return nil, fmt.Errorf("building group lookup: %w", err)
	}

	report := make([]UserGroups, 0, len(decodedUsers))
	for _, user := range decodedUsers {
		if user.Username == "" {
			continue
		}

		entry := UserGroups{Username: user.Username, Groups: make([]GroupMembership, 0, len(user.Groups))}
		for _, name := range user.Groups {
			entry.Groups = append(entry.Groups, GroupMembership{
				Name:        name,
				Description: join.NameOr(groupLookup, name, func(g uaaGroup) string { return g.Description }),
			})
		}
		report = append(report, entry)
	}

	sort.Slice(report, func(i, j int) bool { return report[i].Username < report[j].Username })
	return report, nil
}

// WriteGroupReport renders the audit, one user block per user.
func WriteGroupReport(w io.Writer, report []UserGroups) error {
	for i, user := range report {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", user.Username)
		if len(user.Groups) == 0 {
			fmt.Fprintln(w, "  (no group memberships)")
			continue
		}
		for _, g := range user.Groups {
			fmt.Fprintf(w, "  %s: %s\n", g.Name, g.Description)
		}
	}
	return nil
}
