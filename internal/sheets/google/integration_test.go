//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"moneytrack/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_Append(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewFromEnv(ctx, time.UTC)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	now := time.Now().UTC()
	e := core.Expense{
		ID:          "it-" + now.Format("150405"),
		OwnerID:     "integration",
		Amount:      15000,
		Description: "Integration test",
		Category:    core.Category("makanan"),
		OccurredAt:  now,
		CreatedAt:   now,
	}
	ref, err := client.Append(ctx, e)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	t.Logf("appended at %s", ref)
}
