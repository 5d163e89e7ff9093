//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestListNewsSummaries(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	alice, err := queries.UpsertUser(ctx, "a@x.com", "Alice")
	if err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	bob, err := queries.UpsertUser(ctx, "b@x.com", "Bob")
	if err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if _, err := queries.UpsertUser(ctx, "c@x.com", "Carol"); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	if err := queries.UpsertNewsSummary(ctx, alice, day, strPtr("<p>A</p>")); err != nil {
		t.Fatalf("UpsertNewsSummary failed: %v", err)
	}
	if err := queries.UpsertNewsSummary(ctx, bob, day, nil); err != nil {
		t.Fatalf("UpsertNewsSummary failed: %v", err)
	}
	// A summary on another day must not leak into this batch.
	if err := queries.UpsertNewsSummary(ctx, bob, day.AddDate(0, 0, -1), strPtr("old")); err != nil {
		t.Fatalf("UpsertNewsSummary failed: %v", err)
	}

	items, err := queries.ListNewsSummaries(ctx, day)
	if err != nil {
		t.Fatalf("ListNewsSummaries failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 recipients, got %d", len(items))
	}

	want := map[string]string{"a@x.com": "<p>A</p>", "b@x.com": "", "c@x.com": ""}
	for _, it := range items {
		if it.NewsContent != want[it.Recipient.Email] {
			t.Errorf("%s: expected content %q, got %q", it.Recipient.Email, want[it.Recipient.Email], it.NewsContent)
		}
	}
}

func TestUpsertNewsSummary_Overwrites(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	id, _ := queries.UpsertUser(ctx, "a@x.com", "Alice")
	_ = queries.UpsertNewsSummary(ctx, id, day, strPtr("first"))
	if err := queries.UpsertNewsSummary(ctx, id, day, strPtr("second")); err != nil {
		t.Fatalf("UpsertNewsSummary failed: %v", err)
	}

	items, _ := queries.ListNewsSummaries(ctx, day)
	if len(items) != 1 || items[0].NewsContent != "second" {
		t.Errorf("expected overwritten content, got %+v", items)
	}
}

func TestUpsertUser_SameEmailSameID(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	id1, _ := queries.UpsertUser(ctx, "a@x.com", "Alice")
	id2, err := queries.UpsertUser(ctx, "a@x.com", "Alice B.")
	if err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected same id, got %s and %s", id1, id2)
	}
}

func TestSetUserSubscribed_ExcludesUnsubscribed(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	id, _ := queries.UpsertUser(ctx, "a@x.com", "Alice")
	_ = queries.UpsertNewsSummary(ctx, id, day, strPtr("x"))
	if err := queries.SetUserSubscribed(ctx, "a@x.com", false); err != nil {
		t.Fatalf("SetUserSubscribed failed: %v", err)
	}

	items, err := queries.ListNewsSummaries(ctx, day)
	if err != nil {
		t.Fatalf("ListNewsSummaries failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected unsubscribed user to be excluded, got %+v", items)
	}
}
