package persistence

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationNames_Sorted(t *testing.T) {
	names, err := MigrationNames()
	if err != nil {
		t.Fatalf("MigrationNames: %v", err)
	}
	if len(names) == 0 || names[0] != "0001_init.sql" {
		t.Fatalf("names = %v, want 0001_init.sql first", names)
	}
}

func TestInitMigration_DeclaresConstraints(t *testing.T) {
	content, err := fs.ReadFile(migrationFiles, "migrations/0001_init.sql")
	if err != nil {
		t.Fatal(err)
	}
	sql := string(content)
	for _, want := range []string{
		"teams_lead_id_key",
		"users_email_key",
		"CHECK (status IN ('pending', 'approved', 'rejected'))",
		"CHECK (role IN ('admin', 'team_lead', 'employee'))",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("migration missing %q", want)
		}
	}
}
