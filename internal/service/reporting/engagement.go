package reporting

import (
	"sort"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// reductionThreshold is the month-over-month drop that flags a client.
const reductionThreshold = 0.25

// ClientEngagement compares one client's completed boxes across two months.
// PercentChange is a fraction, -1 when the client ordered nothing this month.
type ClientEngagement struct {
	ClientName     string  `json:"clientName"`
	LastMonthBoxes int     `json:"lastMonthBoxes"`
	ThisMonthBoxes int     `json:"thisMonthBoxes"`
	PercentChange  float64 `json:"percentChange"`
}

// EngagementReport lists clients at risk of churning.
type EngagementReport struct {
	NoOrdersThisMonth []ClientEngagement `json:"noOrdersThisMonth"`
	ReducedOrders     []ClientEngagement `json:"reducedOrders"`
}

// EngagementAt flags clients with Completed orders last month whose requested boxes this
// month fell to zero or dropped by more than a quarter.
func EngagementAt(orders []models.Order, now time.Time) EngagementReport {
	thisMonth := calendar.MonthStart(now)
	lastMonth := calendar.MonthStart(thisMonth.AddDate(0, -1, 0))

	thisSales := make(map[string]int)
	lastSales := make(map[string]int)
	for _, order := range orders {
		if order.Status != models.OrderCompleted {
			continue
		}
		created := order.CreatedAt.In(now.Location())
		switch {
		case !created.Before(thisMonth):
			thisSales[order.ClientName] += models.TotalBoxes(order.Items)
		case !created.Before(lastMonth):
			lastSales[order.ClientName] += models.TotalBoxes(order.Items)
		}
	}

	report := EngagementReport{NoOrdersThisMonth: []ClientEngagement{}, ReducedOrders: []ClientEngagement{}}
	clients := make([]string, 0, len(lastSales))
	for name := range lastSales {
		clients = append(clients, name)
	}
	sort.Strings(clients)

	for _, name := range clients {
		last, current := lastSales[name], thisSales[name]
		if last == 0 {
			continue
		}
		if current == 0 {
			report.NoOrdersThisMonth = append(report.NoOrdersThisMonth, ClientEngagement{
				ClientName:     name,
				LastMonthBoxes: last,
				PercentChange:  -1,
			})
			continue
		}
		change := float64(current-last) / float64(last)
		if change < -reductionThreshold {
			report.ReducedOrders = append(report.ReducedOrders, ClientEngagement{
				ClientName:     name,
				LastMonthBoxes: last,
				ThisMonthBoxes: current,
				PercentChange:  change,
			})
		}
	}
	return report
}
