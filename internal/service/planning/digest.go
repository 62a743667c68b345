package planning

import (
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// FormatDigest renders the plan as the plain-text message sent to the farm manager.
func FormatDigest(plan models.IntelligentSowingPlan, day time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sowing plan for %s\n", calendar.Format(day))

	if len(plan.Plan) == 0 {
		b.WriteString("Nothing to sow today.\n")
	}
	for _, task := range plan.Plan {
		fmt.Fprintf(&b, "- %s: %d trays (%.0fg, %s) %s\n", task.Variety, task.TraysToSow, task.GramsNeeded, task.SeedStatus, task.Reason)
	}

	if len(plan.PurchaseList) > 0 {
		b.WriteString("Buy seed:\n")
		for _, p := range plan.PurchaseList {
			fmt.Fprintf(&b, "- %s: %.0fg. %s\n", p.Variety, p.GramsToBuy, p.Reason)
		}
	}

	if !plan.ForecastUsed {
		b.WriteString("Forecast not used")
		if plan.ForecastError != "" {
			b.WriteString(": " + plan.ForecastError)
		}
		b.WriteString(".\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// SheetRows flattens the plan into spreadsheet rows: date, variety, trays, grams, seed status, reason.
func SheetRows(plan models.IntelligentSowingPlan, day time.Time) [][]interface{} {
	date := calendar.Format(day)
	rows := make([][]interface{}, 0, len(plan.Plan))
	for _, task := range plan.Plan {
		rows = append(rows, []interface{}{date, task.Variety, task.TraysToSow, task.GramsNeeded, string(task.SeedStatus), task.Reason})
	}
	return rows
}
