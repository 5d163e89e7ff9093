package storage

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	in := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)

	got := dateOnly(in)
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	content, err := migrationFS.ReadFile("migrations/001_init.up.sql")
	if err != nil {
		t.Fatalf("expected embedded migration, got %v", err)
	}
	if len(content) == 0 {
		t.Error("expected non-empty migration")
	}
}
