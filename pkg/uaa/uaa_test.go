package uaa

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/logankimmel/tpcf-automation/pkg/pagination"
)

type fakeRunner struct {
	output []byte
	err    error
	args   []string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func TestParseRecords_SingleBlock(t *testing.T) {
	output := []byte("  username: alice\n  email: alice@example.com\n")

	records, err := ParseRecords(output)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}

	var got map[string]string
	if err := json.Unmarshal(records[0], &got); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if got["username"] != "alice" {
		t.Errorf("username = %q, want alice", got["username"])
	}
	if got["email"] != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", got["email"])
	}
}

func TestParseRecords_MultipleBlocks(t *testing.T) {
	output := []byte(`  username: alice
  origin: uaa

  username: bob
  origin: ldap
`)

	records, err := ParseRecords(output)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}

	var second map[string]string
	if err := json.Unmarshal(records[1], &second); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if second["username"] != "bob" {
		t.Errorf("username = %q, want bob", second["username"])
	}
}

func TestParseRecords_RepeatedKeyBecomesArray(t *testing.T) {
	output := []byte(`  username: alice
  groups: cloud_controller.read
  groups: scim.read
  groups: uaa.user
`)

	records, err := ParseRecords(output)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}

	var got struct {
		Username string   `json:"username"`
		Groups   []string `json:"groups"`
	}
	if err := json.Unmarshal(records[0], &got); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if len(got.Groups) != 3 {
		t.Fatalf("groups len = %d, want 3", len(got.Groups))
	}
	if got.Groups[0] != "cloud_controller.read" || got.Groups[2] != "uaa.user" {
		t.Errorf("groups = %v, order not preserved", got.Groups)
	}
}

func TestParseRecords_SkipsDecorationLines(t *testing.T) {
	output := []byte(`====
  displayname: scim.read
  description: Read access to the identity store
====
`)

	records, err := ParseRecords(output)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}

	var got map[string]string
	if err := json.Unmarshal(records[0], &got); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if got["description"] != "Read access to the identity store" {
		t.Errorf("description = %q", got["description"])
	}
}

func TestParseRecords_NormalizesKeys(t *testing.T) {
	output := []byte("  Display Name: admins\n")

	records, err := ParseRecords(output)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(records[0], &got); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if got["display_name"] != "admins" {
		t.Errorf("display_name = %q, want admins", got["display_name"])
	}
}

func TestParseRecords_Empty(t *testing.T) {
	records, err := ParseRecords(nil)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestPager_FetchPage(t *testing.T) {
	runner := &fakeRunner{output: []byte("  username: alice\n")}
	pager := NewPager(runner)

	page, err := pager.FetchPage(context.Background(), "users")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Resources) != 1 {
		t.Errorf("resources = %d, want 1", len(page.Resources))
	}
	if page.Next != "" {
		t.Errorf("Next = %q, want empty (single page)", page.Next)
	}
	if len(runner.args) != 1 || runner.args[0] != "users" {
		t.Errorf("runner args = %v, want [users]", runner.args)
	}
}

func TestPager_FetchPage_SplitsArguments(t *testing.T) {
	runner := &fakeRunner{output: []byte("")}
	pager := NewPager(runner)

	if _, err := pager.FetchPage(context.Background(), "groups -a description"); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	want := []string{"groups", "-a", "description"}
	if len(runner.args) != len(want) {
		t.Fatalf("runner args = %v, want %v", runner.args, want)
	}
	for i := range want {
		if runner.args[i] != want[i] {
			t.Fatalf("runner args = %v, want %v", runner.args, want)
		}
	}
}

func TestPager_FetchPage_RunnerError(t *testing.T) {
	runnerErr := errors.New("uaac not logged in")
	pager := NewPager(&fakeRunner{err: runnerErr})

	_, err := pager.FetchPage(context.Background(), "users")
	if !errors.Is(err, runnerErr) {
		t.Fatalf("FetchPage() error = %v, want wrapped runner error", err)
	}
}

func TestPager_WithFetchAll(t *testing.T) {
	runner := &fakeRunner{output: []byte("  username: alice\n\n  username: bob\n")}
	pager := NewPager(runner)

	resources, err := pagination.FetchAll(context.Background(), pager, "users")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(resources) != 2 {
		t.Errorf("resources = %d, want 2", len(resources))
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	runner := &ExecRunner{Path: "/nonexistent/uaac"}

	_, err := runner.Run(context.Background(), "users")
	if err == nil {
		t.Fatal("Run() error = nil, want failure for missing binary")
	}
}
