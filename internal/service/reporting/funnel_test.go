package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

var reportNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }

func items(pairs ...any) []models.OrderItem {
	var out []models.OrderItem
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.OrderItem{Variety: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return out
}

func TestSeedToSale(t *testing.T) {
	in := FunnelInput{
		Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		PurchaseOrders: []models.PurchaseOrder{
			{Status: models.PurchaseReceived, ReceivedAt: timePtr(at(2024, 5, 2)), Items: []models.PurchaseOrderItem{{Variety: "Sunflower", Quantity: 1200}, {Variety: "Radish", Quantity: 400}}},
			{Status: models.PurchaseReceived, ReceivedAt: timePtr(at(2024, 5, 15)), Items: []models.PurchaseOrderItem{{Variety: "Sunflower", Quantity: 1200}}},
			{Status: models.PurchaseReceived, ReceivedAt: timePtr(at(2024, 4, 20)), Items: []models.PurchaseOrderItem{{Variety: "Radish", Quantity: 9999}}},
			{Status: models.PurchaseOrdered, Items: []models.PurchaseOrderItem{{Variety: "Radish", Quantity: 5000}}},
		},
		SeedInventory: models.SeedInventory{
			"Sunflower": {GramsPerTray: 120},
			"Radish":    {GramsPerTray: 80},
		},
		Orders: []models.Order{
			{Status: models.OrderCompleted, CreatedAt: at(2024, 5, 3), Items: items("Sunflower", 20), ActualHarvest: items("Sunflower", 18)},
			{Status: models.OrderDispatched, CreatedAt: at(2024, 5, 4), Items: items("Radish", 5)},
			{Status: models.OrderPending, CreatedAt: at(2024, 5, 4), Items: items("Radish", 50)},
			{Status: models.OrderShortfall, CreatedAt: at(2024, 5, 5), Items: items("Peas", 4), ActualHarvest: items("Peas", 3)},
		},
		Log: models.HarvestLog{
			"2024-04-25": {Date: "2024-04-25", Trays: map[string]int{"Sunflower": 3}},
		},
		Now: reportNow,
	}

	rows := SeedToSale(in)
	require.Len(t, rows, 3)

	assert.Equal(t, "Sunflower", rows[0].Variety)
	assert.Equal(t, 2400.0, rows[0].SeedPurchased)
	assert.Equal(t, 20.0, rows[0].PotentialTrays)
	assert.Equal(t, 120.0, rows[0].PotentialBoxes, "all-time ratio 18/3")
	assert.Equal(t, 18, rows[0].BoxesSold)
	assert.InDelta(t, 15.0, rows[0].ConversionRate, 1e-9)

	assert.Equal(t, "Radish", rows[1].Variety)
	assert.Equal(t, 5.0, rows[1].PotentialTrays)
	assert.Equal(t, 25.0, rows[1].PotentialBoxes, "default ratio")
	assert.Equal(t, 5, rows[1].BoxesSold)
	assert.InDelta(t, 20.0, rows[1].ConversionRate, 1e-9)

	assert.Equal(t, models.FunnelRow{Variety: "Peas", BoxesSold: 3}, rows[2], "sold without purchase has no potential")
}

func TestSeedToSaleZeroGramsPerTray(t *testing.T) {
	rows := SeedToSale(FunnelInput{
		Start: reportNow.AddDate(0, 0, -30),
		End:   reportNow,
		PurchaseOrders: []models.PurchaseOrder{
			{Status: models.PurchaseReceived, ReceivedAt: timePtr(reportNow), Items: []models.PurchaseOrderItem{{Variety: "Basil", Quantity: 100}}},
		},
		Now: reportNow,
	})

	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].PotentialTrays)
	assert.Zero(t, rows[0].ConversionRate)
}
