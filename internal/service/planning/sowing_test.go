package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

var testVarieties = []models.MicrogreenVariety{
	{Name: "Sunflower", GrowthCycleDays: 8},
	{Name: "Radish", GrowthCycleDays: 7},
	{Name: "Peas", GrowthCycleDays: 10},
}

func TestGenerateSowingPlan(t *testing.T) {
	orders := []models.Order{
		{ID: "1", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 18)), Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 7}}},
		{ID: "2", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 18)), Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 5}}},
		{ID: "3", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 17)), Items: []models.OrderItem{{Variety: "Radish", Quantity: 6}}},
		{ID: "4", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 20)), Items: []models.OrderItem{{Variety: "Radish", Quantity: 9}}},
		{ID: "5", Status: models.OrderHarvested, DeliveryDate: datePtr(day(2024, 3, 18)), Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 50}}},
		{ID: "6", Status: models.OrderPending, Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 50}}},
		{ID: "7", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 18)), Items: []models.OrderItem{{Variety: "Kale", Quantity: 3}}},
	}

	plan := GenerateSowingPlan(SowingPlanInput{
		Orders:     orders,
		Varieties:  testVarieties,
		TargetDate: day(2024, 3, 10),
	})

	assert.Equal(t, []models.SowingPlanItem{
		{Variety: "Radish", Trays: 2, Reason: "For 6 boxes due 2024-03-17"},
		{Variety: "Sunflower", Trays: 3, Reason: "For 12 boxes due 2024-03-18"},
	}, plan)
}

func TestGenerateSowingPlanDropsPastSowDates(t *testing.T) {
	orders := []models.Order{
		{ID: "1", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 15)), Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 10}}},
	}

	plan := GenerateSowingPlan(SowingPlanInput{Orders: orders, Varieties: testVarieties, TargetDate: day(2024, 3, 10)})
	assert.Empty(t, plan)
}

func TestGenerateSowingPlanUsesHistoricalYield(t *testing.T) {
	orders := []models.Order{
		{ID: "1", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 18)), Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 12}}},
		{
			ID: "2", Status: models.OrderCompleted, CreatedAt: day(2024, 2, 9),
			ActualHarvest: []models.OrderItem{{Variety: "Sunflower", Quantity: 20}},
		},
	}
	log := models.HarvestLog{"2024-02-01": {Date: "2024-02-01", Trays: map[string]int{"Sunflower": 2}}}

	plan := GenerateSowingPlan(SowingPlanInput{Orders: orders, Varieties: testVarieties, Log: log, TargetDate: day(2024, 3, 10)})

	assert.Equal(t, []models.SowingPlanItem{
		{Variety: "Sunflower", Trays: 2, Reason: "For 12 boxes due 2024-03-18"},
	}, plan)
}

func TestGenerateSowingPlanRoundsTraysUp(t *testing.T) {
	varieties := []models.MicrogreenVariety{{Name: "Sunflower", GrowthCycleDays: 8}}
	orders := []models.Order{
		{ID: "1", Status: models.OrderPending, DeliveryDate: datePtr(day(2024, 3, 18)), Items: []models.OrderItem{{Variety: "Sunflower", Quantity: 4}}},
	}

	plan := GenerateSowingPlan(SowingPlanInput{Orders: orders, Varieties: varieties, TargetDate: day(2024, 3, 10)})
	assert.Len(t, plan, 1)
	assert.Equal(t, 1, plan[0].Trays)
}
