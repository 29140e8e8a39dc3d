package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hostelgrievance/grievance-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestComplaintsMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_complaints"), []string{
		"CREATE TABLE IF NOT EXISTS complaints",
		"CREATE TABLE IF NOT EXISTS complaint_details",
		"CREATE TABLE IF NOT EXISTS upvotes",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_upvotes_user_complaint ON upvotes (user_id, complaint_id)",
		"FOREIGN KEY (complaint_id) REFERENCES complaints(id) ON DELETE CASCADE",
		"CHECK (upvotes >= 0)",
		"DROP TABLE IF EXISTS complaints",
	})
}

func TestStaffMigrationCascadesFromUsers(t *testing.T) {
	assertContains(t, readMigration(t, "create_staff_profiles"), []string{
		"CREATE TABLE IF NOT EXISTS issue_incharges",
		"CREATE TABLE IF NOT EXISTS resolvers",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (rank >= 1)",
	})
}

func TestCatalogMigrationHasTripleUniqueness(t *testing.T) {
	assertContains(t, readMigration(t, "create_catalog"), []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_locations_triple ON locations (category, name, block)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_tags_name ON tags (name)",
	})
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Complaint Priority!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_complaint_priority.sql") {
		t.Fatalf("unexpected migration filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "create_x.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail validation")
	}
}

func TestCreateSQLMigrationScaffoldsTables(t *testing.T) {
	dir := t.TempDir()
	first, err := migrate.CreateSQLMigration(dir, "create_complaint_comments")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	assertContains(t, string(data), []string{
		"CREATE TABLE IF NOT EXISTS complaint_comments",
		"DROP TABLE IF EXISTS complaint_comments",
	})

	second, err := migrate.CreateSQLMigration(dir, "add_comment_index")
	if err != nil {
		t.Fatalf("create second migration: %v", err)
	}
	if filepath.Base(second) <= filepath.Base(first) {
		t.Fatalf("expected %s to sort after %s", second, first)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migrations should validate: %v", err)
	}
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n\n-- +goose Down\nSELECT 1;\n"
	if err := os.WriteFile(filepath.Join(dir, "20260105090000_broken.sql"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected unterminated statement block to fail validation")
	}
}
