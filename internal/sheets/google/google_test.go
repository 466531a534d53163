package google

import (
	"context"
	"strings"
	"testing"
	"time"

	"moneytrack/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background(), time.UTC)
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background(), time.UTC)
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/credentials.json")

	_, err := NewFromEnv(context.Background(), time.UTC)
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestClient_AppendValidates(t *testing.T) {
	c := &Client{spreadsheetID: "test", loc: time.UTC}

	_, err := c.Append(context.Background(), core.Expense{Description: "x"})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}

	valid := core.Expense{
		OwnerID:     "1",
		Amount:      1000,
		Description: "Kopi",
		Category:    "makanan",
		OccurredAt:  time.Now(),
	}
	_, err = c.Append(context.Background(), valid)
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("expected uninitialized service error, got %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Pengeluaran", 2024, "2024 Pengeluaran"},
		{"2023 Pengeluaran", 2024, "2023 Pengeluaran"},
		{"  Pengeluaran  ", 2025, "2025 Pengeluaran"},
		{"", 2024, ""},
		{"20xx Data", 2024, "2024 20xx Data"},
	}
	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q",
				tt.baseName, tt.year, got, tt.expected)
		}
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Budi's 2024"); got != "'Budi''s 2024'" {
		t.Errorf("unexpected quoting %q", got)
	}
}

func TestExpenseRow(t *testing.T) {
	jkt := time.FixedZone("WIB", 7*3600)
	e := core.Expense{
		ID:          "01",
		OwnerID:     "7",
		Amount:      25000,
		Description: "Bakso",
		Category:    "makanan",
		OccurredAt:  time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC),
	}
	row := expenseRow(e, jkt)
	want := []any{"2024-03-02 03:30", "7", int64(25000), "Bakso", "makanan", "01"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("col %d: got %v want %v", i, row[i], want[i])
		}
	}
}
