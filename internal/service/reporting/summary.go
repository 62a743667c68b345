package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const topClientLimit = 5

// ClientBoxes is a client's box total within a report window.
type ClientBoxes struct {
	Name  string `json:"name"`
	Boxes int    `json:"boxes"`
}

// PeriodSummary aggregates the orders created within a window.
type PeriodSummary struct {
	Start              string                     `json:"start"`
	End                string                     `json:"end"`
	TotalOrders        int                        `json:"totalOrders"`
	TotalBoxes         int                        `json:"totalBoxes"`
	CompletedOrders    int                        `json:"completedOrders"`
	ShortfallOrders    int                        `json:"shortfallOrders"`
	ShortfallBoxes     int                        `json:"shortfallBoxes"`
	StatusCounts       map[models.OrderStatus]int `json:"statusCounts"`
	BoxesByVariety     map[string]int             `json:"boxesByVariety"`
	TopClients         []ClientBoxes              `json:"topClients"`
	DeliveryModeCounts map[string]int             `json:"deliveryModeCounts"`
	CashReceived       float64                    `json:"cashReceived"`
}

// SummarizePeriod reports on orders with CreatedAt in [start, endOfDay(end)]. Boxes count the
// harvested lines when present. Cash is only taken from Completed orders.
func SummarizePeriod(orders []models.Order, start, end time.Time) PeriodSummary {
	summary := PeriodSummary{
		Start:              calendar.Format(start),
		End:                calendar.Format(end),
		StatusCounts:       make(map[models.OrderStatus]int, len(models.AllOrderStatuses)),
		BoxesByVariety:     make(map[string]int),
		TopClients:         []ClientBoxes{},
		DeliveryModeCounts: make(map[string]int),
	}
	for _, status := range models.AllOrderStatuses {
		summary.StatusCounts[status] = 0
	}

	cash := decimal.Zero
	clients := make(map[string]int)

	for _, order := range orders {
		if !calendar.InRange(order.CreatedAt, start, end) {
			continue
		}
		summary.TotalOrders++
		summary.StatusCounts[order.Status]++

		if order.DeliveryMode != "" && (order.Status == models.OrderDispatched || order.Status == models.OrderCompleted) {
			summary.DeliveryModeCounts[order.DeliveryMode]++
		}
		if order.Status == models.OrderCompleted && order.CashReceived != nil {
			cash = cash.Add(decimal.NewFromFloat(*order.CashReceived))
		}

		items := order.FulfilledItems()
		boxes := models.TotalBoxes(items)
		summary.TotalBoxes += boxes
		clients[order.ClientName] += boxes
		for _, item := range items {
			summary.BoxesByVariety[item.Variety] += item.Quantity
		}
		summary.ShortfallBoxes += shortfallBoxes(order)
	}

	summary.CompletedOrders = summary.StatusCounts[models.OrderCompleted]
	summary.ShortfallOrders = summary.StatusCounts[models.OrderShortfall]
	summary.CashReceived = cash.InexactFloat64()
	summary.TopClients = topClients(clients, topClientLimit)
	return summary
}

// shortfallBoxes sums requested minus harvested per harvested line.
func shortfallBoxes(order models.Order) int {
	if order.ActualHarvest == nil {
		return 0
	}
	requested := make(map[string]int, len(order.Items))
	for _, item := range order.Items {
		requested[item.Variety] = item.Quantity
	}
	total := 0
	for _, got := range order.ActualHarvest {
		if want := requested[got.Variety]; want > got.Quantity {
			total += want - got.Quantity
		}
	}
	return total
}

func topClients(clients map[string]int, limit int) []ClientBoxes {
	out := make([]ClientBoxes, 0, len(clients))
	for name, boxes := range clients {
		out = append(out, ClientBoxes{Name: name, Boxes: boxes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Boxes != out[j].Boxes {
			return out[i].Boxes > out[j].Boxes
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
