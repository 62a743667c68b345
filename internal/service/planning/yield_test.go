package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestCalculateYieldRatios(t *testing.T) {
	log := models.HarvestLog{
		"2024-01-02": {Date: "2024-01-02", Trays: map[string]int{"Sunflower": 10, "Radish": 4}},
		"2023-12-01": {Date: "2023-12-01", Trays: map[string]int{"Sunflower": 99}},
	}
	orders := []models.Order{
		{
			ID: "a", Status: models.OrderCompleted, CreatedAt: day(2024, 1, 5),
			Items:         []models.OrderItem{{Variety: "Sunflower", Quantity: 45}},
			ActualHarvest: []models.OrderItem{{Variety: "Sunflower", Quantity: 40}},
		},
		{
			ID: "b", Status: models.OrderDispatched, CreatedAt: time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC),
			ActualHarvest: []models.OrderItem{{Variety: "Peas", Quantity: 3}},
		},
		{
			ID: "c", Status: models.OrderPending, CreatedAt: day(2024, 1, 6),
			ActualHarvest: []models.OrderItem{{Variety: "Sunflower", Quantity: 100}},
		},
		{
			ID: "d", Status: models.OrderHarvested, CreatedAt: day(2024, 1, 7),
			Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 5}},
		},
	}

	rows := CalculateYieldRatios(orders, log, day(2024, 1, 1), day(2024, 1, 31))
	require.Len(t, rows, 3)

	assert.Equal(t, "Peas", rows[0].Variety)
	assert.Equal(t, 0, rows[0].TraysSown)
	assert.Equal(t, 3, rows[0].BoxesHarvested)
	assert.Nil(t, rows[0].YieldRatio)

	assert.Equal(t, "Radish", rows[1].Variety)
	require.NotNil(t, rows[1].YieldRatio)
	assert.Equal(t, 0.0, *rows[1].YieldRatio)

	assert.Equal(t, "Sunflower", rows[2].Variety)
	assert.Equal(t, 10, rows[2].TraysSown)
	assert.Equal(t, 40, rows[2].BoxesHarvested)
	require.NotNil(t, rows[2].YieldRatio)
	assert.InDelta(t, 4.0, *rows[2].YieldRatio, 1e-9)
}

func TestCalculateYieldRatiosEmpty(t *testing.T) {
	rows := CalculateYieldRatios(nil, nil, day(2024, 1, 1), day(2024, 1, 31))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestYieldMapKeepsPositiveRatios(t *testing.T) {
	log := models.HarvestLog{
		"2024-01-02": {Date: "2024-01-02", Trays: map[string]int{"Sunflower": 10, "Radish": 4}},
	}
	orders := []models.Order{{
		ID: "a", Status: models.OrderCompleted, CreatedAt: day(2024, 1, 5),
		ActualHarvest: []models.OrderItem{{Variety: "Sunflower", Quantity: 40}, {Variety: "Peas", Quantity: 2}},
	}}

	yields := YieldMap(orders, log, day(2024, 1, 1), day(2024, 1, 31))
	assert.Equal(t, map[string]float64{"Sunflower": 4}, yields)
	assert.Equal(t, 4.0, ratioFor(yields, "Sunflower"))
	assert.Equal(t, DefaultYieldRatio, ratioFor(yields, "Radish"))
}
