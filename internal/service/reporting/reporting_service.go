package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// StateSource exposes the read side of the application store.
type StateSource interface {
	Snapshot() models.AppData
	Now() time.Time
}

// SummaryRepository persists weekly summaries for later trend analysis.
type SummaryRepository interface {
	SaveWeeklySummary(ctx context.Context, summary models.WeeklySummary) error
}

// Service builds the weekly summary pushed to WhatsApp and stored in MongoDB.
type Service struct {
	state  StateSource
	repo   SummaryRepository
	logger *zap.Logger
}

// NewService wires a new reporting service instance. repo may be nil when no summary
// storage is configured.
func NewService(state StateSource, repository SummaryRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{state: state, repo: repository, logger: logger}
}

// WeeklySummary aggregates the Monday-to-Sunday week before now and stores it when a
// repository is configured. A storage failure is returned alongside the computed summary.
func (s *Service) WeeklySummary(ctx context.Context) (models.WeeklySummary, error) {
	now := s.state.Now()
	weekStart := calendar.AddDays(calendar.MondayStart(now), -7)
	weekEnd := calendar.AddDays(weekStart, 6)

	summary := BuildWeeklySummary(s.state.Snapshot(), weekStart, weekEnd)
	summary.GeneratedAt = now

	if s.repo == nil {
		return summary, nil
	}
	if err := s.repo.SaveWeeklySummary(ctx, summary); err != nil {
		return summary, fmt.Errorf("save weekly summary: %w", err)
	}
	s.logger.Info("weekly summary stored",
		zap.String("week_start", summary.WeekStart),
		zap.Int("orders", summary.TotalOrders),
		zap.Int("boxes", summary.TotalBoxes),
	)
	return summary, nil
}

// BuildWeeklySummary combines the period summary with waste and delivery spend in [start, end].
func BuildWeeklySummary(data models.AppData, start, end time.Time) models.WeeklySummary {
	period := SummarizePeriod(data.Orders, start, end)

	wasted := 0
	for _, entry := range data.WasteLog {
		if calendar.InRange(entry.Date, start, end) {
			wasted += entry.TraysWasted
		}
	}
	spend := decimal.Zero
	for _, expense := range data.DeliveryExpenses {
		if calendar.InRange(expense.Date, start, end) {
			spend = spend.Add(decimal.NewFromFloat(expense.Amount))
		}
	}

	return models.WeeklySummary{
		WeekStart:      period.Start,
		WeekEnd:        period.End,
		TotalOrders:    period.TotalOrders,
		TotalBoxes:     period.TotalBoxes,
		ShortfallBoxes: period.ShortfallBoxes,
		CashReceived:   period.CashReceived,
		BoxesByVariety: period.BoxesByVariety,
		TraysWasted:    wasted,
		DeliverySpend:  spend.InexactFloat64(),
	}
}

// FormatWeeklySummary renders the summary as a short WhatsApp message.
func FormatWeeklySummary(summary models.WeeklySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly summary (%s to %s)\n", summary.WeekStart, summary.WeekEnd)
	if summary.TotalOrders == 0 {
		b.WriteString("No orders this week.")
		return b.String()
	}
	fmt.Fprintf(&b, "Orders: %d, boxes: %d, shortfall: %d\n", summary.TotalOrders, summary.TotalBoxes, summary.ShortfallBoxes)
	fmt.Fprintf(&b, "Cash received: %s\n", decimal.NewFromFloat(summary.CashReceived).StringFixed(2))
	if summary.DeliverySpend > 0 {
		fmt.Fprintf(&b, "Delivery spend: %s\n", decimal.NewFromFloat(summary.DeliverySpend).StringFixed(2))
	}
	if summary.TraysWasted > 0 {
		fmt.Fprintf(&b, "Trays wasted: %d\n", summary.TraysWasted)
	}

	varieties := make([]string, 0, len(summary.BoxesByVariety))
	for v := range summary.BoxesByVariety {
		varieties = append(varieties, v)
	}
	sort.Strings(varieties)
	for _, v := range varieties {
		fmt.Fprintf(&b, "- %s: %d\n", v, summary.BoxesByVariety[v])
	}
	return strings.TrimRight(b.String(), "\n")
}
