package view

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/marches/internal/amount"
)

const dbTimeout = 5 * time.Second

func FormatAmount(v float64) string {
	return amount.Format(v)
}

func FormatPct(v float64) string {
	return fmt.Sprintf("%.1f %%", v)
}

// FormatDate formats an optional date into YYYY-MM-DD.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
