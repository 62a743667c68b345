package reporting

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const (
	unspecifiedLocation = "Unspecified Location"
	topVarietyLimit     = 3
)

// VarietyBoxes is a variety's box total.
type VarietyBoxes struct {
	Variety string `json:"variety"`
	Boxes   int    `json:"boxes"`
}

// LocationSales aggregates completed orders delivered to one location.
type LocationSales struct {
	Location     string         `json:"location"`
	TotalOrders  int            `json:"totalOrders"`
	TotalBoxes   int            `json:"totalBoxes"`
	TotalCash    float64        `json:"totalCash"`
	TopVarieties []VarietyBoxes `json:"topVarieties"`
}

// SalesByLocation groups Completed orders by trimmed location, largest box total first.
func SalesByLocation(orders []models.Order) []LocationSales {
	type bucket struct {
		orders    int
		boxes     int
		cash      decimal.Decimal
		varieties map[string]int
	}
	buckets := make(map[string]*bucket)

	for _, order := range orders {
		if order.Status != models.OrderCompleted {
			continue
		}
		location := strings.TrimSpace(order.Location)
		if location == "" {
			location = unspecifiedLocation
		}
		b, ok := buckets[location]
		if !ok {
			b = &bucket{cash: decimal.Zero, varieties: make(map[string]int)}
			buckets[location] = b
		}
		b.orders++
		if order.CashReceived != nil {
			b.cash = b.cash.Add(decimal.NewFromFloat(*order.CashReceived))
		}
		for _, item := range order.FulfilledItems() {
			b.boxes += item.Quantity
			b.varieties[item.Variety] += item.Quantity
		}
	}

	out := make([]LocationSales, 0, len(buckets))
	for location, b := range buckets {
		out = append(out, LocationSales{
			Location:     location,
			TotalOrders:  b.orders,
			TotalBoxes:   b.boxes,
			TotalCash:    b.cash.InexactFloat64(),
			TopVarieties: topVarieties(b.varieties, topVarietyLimit),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBoxes != out[j].TotalBoxes {
			return out[i].TotalBoxes > out[j].TotalBoxes
		}
		return out[i].Location < out[j].Location
	})
	return out
}

func topVarieties(sales map[string]int, limit int) []VarietyBoxes {
	out := make([]VarietyBoxes, 0, len(sales))
	for variety, boxes := range sales {
		out = append(out, VarietyBoxes{Variety: variety, Boxes: boxes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Boxes != out[j].Boxes {
			return out[i].Boxes > out[j].Boxes
		}
		return out[i].Variety < out[j].Variety
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
