package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmadriz/portfolio-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestMediaFilesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_media_files.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS media_files",
		"CHECK (size_bytes >= 0)",
		"CHECK (r2_url IS NOT NULL OR supabase_url IS NOT NULL OR local_path IS NOT NULL)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_media_files_filename",
		"DROP TABLE IF EXISTS media_files",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProjectChildTablesCascadeOnDelete(t *testing.T) {
	content := readMigration(t, "*_create_projects.sql")

	children := []string{
		"project_links",
		"project_technologies",
		"project_images",
		"project_features",
		"project_roadmap_phases",
		"project_stats",
		"project_metrics",
		"project_testimonials",
	}
	for _, table := range children {
		if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("missing child table %s", table)
		}
	}
	if got := strings.Count(content, "FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE"); got != len(children) {
		t.Errorf("expected %d cascading project_id foreign keys, found %d", len(children), got)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
