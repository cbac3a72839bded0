package database

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

// 埋め込みマイグレーションがup/downの対で連番になっていることを検証（DB不要）
func TestEmbeddedMigrations_PairedAndSequential(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}

	ups := map[int]string{}
	downs := map[int]string{}
	for _, e := range entries {
		var version int
		var rest string
		if _, err := fmt.Sscanf(e.Name(), "%06d_%s", &version, &rest); err != nil {
			t.Fatalf("unexpected migration file name %q: %v", e.Name(), err)
		}
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups[version] = e.Name()
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs[version] = e.Name()
		default:
			t.Errorf("migration %q must end with .up.sql or .down.sql", e.Name())
		}
	}

	if len(ups) != 4 {
		t.Errorf("up migrations = %d, want 4", len(ups))
	}
	for v := 1; v <= len(ups); v++ {
		if ups[v] == "" || downs[v] == "" {
			t.Errorf("version %d: up=%q down=%q, want both", v, ups[v], downs[v])
		}
	}
}

// シードはチェックリスト記録を含まず、参照データの5施術と2合併症のみを投入する
func TestEmbeddedMigrations_SeedContents(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000004_seed_reference_data.up.sql")
	if err != nil {
		t.Fatalf("failed to read seed migration: %v", err)
	}
	seed := string(data)

	for _, slug := range []string{"crows-feet", "forehead-lines", "glabellar-lines", "lip-enhancement", "nasolabial-folds"} {
		if !strings.Contains(seed, "'"+slug+"'") {
			t.Errorf("seed should contain procedure %q", slug)
		}
	}
	for _, name := range []string{"Eyelid Ptosis", "Vascular Occlusion"} {
		if !strings.Contains(seed, name) {
			t.Errorf("seed should contain complication %q", name)
		}
	}
	if strings.Contains(seed, "checklist_records") {
		t.Error("seed must not insert checklist records")
	}
}
