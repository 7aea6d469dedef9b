package cmd

import (
	"path/filepath"
	"testing"

	"paylog/storage"
	"paylog/worklog"
)

func TestFindFreelancerByEmail(t *testing.T) {
	t.Parallel()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "import.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if _, err := store.InsertFreelancer(worklog.Freelancer{
		Name:       "Dana Developer",
		Email:      "dana@example.com",
		HourlyRate: 80,
	}); err != nil {
		t.Fatalf("insert freelancer: %v", err)
	}

	t.Run("matches case insensitively", func(t *testing.T) {
		freelancer, err := findFreelancerByEmail(store, "  DANA@example.com ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if freelancer.Name != "Dana Developer" {
			t.Fatalf("unexpected freelancer: %+v", freelancer)
		}
	})

	t.Run("fails on unknown email", func(t *testing.T) {
		if _, err := findFreelancerByEmail(store, "nobody@example.com"); err == nil {
			t.Fatalf("expected error for unknown email")
		}
	})
}
