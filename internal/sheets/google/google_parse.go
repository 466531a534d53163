package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"moneytrack/internal/core"
)

func expenseRow(e core.Expense, loc *time.Location) []any {
	return []any{
		e.OccurredAt.In(loc).Format("2006-01-02 15:04"),
		e.OwnerID,
		e.Amount,
		e.Description,
		string(e.Category),
		e.ID,
	}
}

// quoteSheet quotes a tab title for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
