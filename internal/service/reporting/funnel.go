// Package reporting derives read-only analytics from the application snapshot.
package reporting

import (
	"sort"
	"time"

	"github.com/mamadbah2/microgreens/internal/domain/calendar"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/planning"
)

// soldStatuses are the order states whose boxes count as sold in the funnel.
var soldStatuses = map[models.OrderStatus]bool{
	models.OrderCompleted:  true,
	models.OrderDispatched: true,
	models.OrderShortfall:  true,
}

// yieldEpoch marks the start of the all-time yield window.
var yieldEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// FunnelInput carries everything the seed-to-sale funnel reads. End is inclusive to the end of day.
type FunnelInput struct {
	Start          time.Time
	End            time.Time
	PurchaseOrders []models.PurchaseOrder
	SeedInventory  models.SeedInventory
	Orders         []models.Order
	Log            models.HarvestLog
	Now            time.Time
}

// SeedToSale computes, per variety, seed received in the window, the trays and boxes it could
// produce at the all-time yield ratio, and the boxes actually sold. Rows are sorted by seed
// purchased, largest first.
func SeedToSale(in FunnelInput) []models.FunnelRow {
	purchased := make(map[string]float64)
	for _, po := range in.PurchaseOrders {
		if po.Status != models.PurchaseReceived || po.ReceivedAt == nil {
			continue
		}
		if !calendar.InRange(*po.ReceivedAt, in.Start, in.End) {
			continue
		}
		for _, item := range po.Items {
			purchased[item.Variety] += item.Quantity
		}
	}

	sold := make(map[string]int)
	for _, order := range in.Orders {
		if !soldStatuses[order.Status] || !calendar.InRange(order.CreatedAt, in.Start, in.End) {
			continue
		}
		for _, item := range order.FulfilledItems() {
			sold[item.Variety] += item.Quantity
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	yields := planning.YieldMap(in.Orders, in.Log, yieldEpoch.In(now.Location()), now)

	seen := make(map[string]bool, len(purchased)+len(sold))
	var names []string
	for v := range purchased {
		if !seen[v] {
			seen[v] = true
			names = append(names, v)
		}
	}
	for v := range sold {
		if !seen[v] {
			seen[v] = true
			names = append(names, v)
		}
	}
	sort.Strings(names)

	rows := make([]models.FunnelRow, 0, len(names))
	for _, variety := range names {
		row := models.FunnelRow{
			Variety:       variety,
			SeedPurchased: purchased[variety],
			BoxesSold:     sold[variety],
		}
		if gpt := in.SeedInventory[variety].GramsPerTray; gpt > 0 {
			row.PotentialTrays = row.SeedPurchased / gpt
		}
		ratio, ok := yields[variety]
		if !ok {
			ratio = planning.DefaultYieldRatio
		}
		row.PotentialBoxes = row.PotentialTrays * ratio
		if row.PotentialBoxes > 0 {
			row.ConversionRate = float64(row.BoxesSold) / row.PotentialBoxes * 100
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SeedPurchased > rows[j].SeedPurchased
	})
	return rows
}
