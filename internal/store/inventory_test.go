package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestSaveSowingLogDeductsSeed(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	_, err := s.UpdateSeedInventory(ctx, "Sunflower", models.SeedInventoryPatch{StockOnHand: floatPtr(2000), GramsPerTray: floatPtr(120)})
	require.NoError(t, err)

	entry, err := s.SaveSowingLog(ctx, time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC), map[string]int{"Sunflower": 10})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", entry.Date)
	assert.Equal(t, 800.0, s.SeedInventory()["Sunflower"].StockOnHand)
	assert.Equal(t, map[string]int{"Sunflower": 10}, s.SowingLog()["2024-01-01"].Trays)
}

func TestSaveSowingLogResaveAdjustsByDelta(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	sowDay := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.SaveSowingLog(ctx, sowDay, map[string]int{"Radish": 5, "Peas": 2})
	require.NoError(t, err)
	_, err = s.SaveSowingLog(ctx, sowDay, map[string]int{"Radish": 3})
	require.NoError(t, err)

	seeds := s.SeedInventory()
	assert.Equal(t, 2500.0-3*80, seeds["Radish"].StockOnHand)
	assert.Equal(t, 8000.0-2*200, seeds["Peas"].StockOnHand)
	assert.Equal(t, map[string]int{"Radish": 3, "Peas": 2}, s.SowingLog()["2024-01-01"].Trays)
}

func TestSaveSowingLogAllowsNegativeStock(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.SaveSowingLog(ctx, storeNow, map[string]int{"Broccoli": 100})
	require.NoError(t, err)
	assert.Equal(t, 1500.0-100*30, s.SeedInventory()["Broccoli"].StockOnHand)
}

func TestSaveSowingLogValidation(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.SaveSowingLog(ctx, storeNow, map[string]int{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.SaveSowingLog(ctx, storeNow, map[string]int{"Kale": 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.SaveSowingLog(ctx, storeNow, map[string]int{"Radish": -2})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.SowingLog())
}

func TestUpdateSeedInventory(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	item, err := s.UpdateSeedInventory(ctx, "Mustard", models.SeedInventoryPatch{SafetyStockBoxes: floatPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4.0, item.SafetyStockBoxes)
	assert.Equal(t, 1200.0, item.StockOnHand)

	_, err = s.UpdateSeedInventory(ctx, "Kale", models.SeedInventoryPatch{StockOnHand: floatPtr(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateSeedInventory(ctx, "Mustard", models.SeedInventoryPatch{GramsPerTray: floatPtr(-1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVarietyRegistry(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	added, err := s.AddVariety(ctx, "  Basil ", 12)
	require.NoError(t, err)
	assert.Equal(t, "Basil", added.Name)
	assert.Contains(t, s.SeedInventory(), "Basil")

	_, err = s.AddVariety(ctx, "Basil", 10)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AddVariety(ctx, "Chard", 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.AddOrder(ctx, OrderInput{ClientName: "Cafe", Items: []models.OrderItem{{Variety: "Basil", Quantity: 1}}})
	require.NoError(t, err)
	assert.ErrorIs(t, s.DeleteVariety(ctx, "Basil"), ErrBusinessRule)
	assert.ErrorIs(t, s.DeleteVariety(ctx, "Kale"), ErrNotFound)

	require.NoError(t, s.DeleteVariety(ctx, "Mustard"))
	assert.NotContains(t, s.SeedInventory(), "Mustard")
}

func TestImportVarieties(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.ImportVarieties(ctx, []models.MicrogreenVariety{{Name: "Basil", GrowthCycleDays: 12}, {Name: "radish", GrowthCycleDays: 7}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.ImportVarieties(ctx, []models.MicrogreenVariety{{Name: "Basil", GrowthCycleDays: 12}, {Name: "BASIL", GrowthCycleDays: 7}})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, s.Varieties(), 5)

	n, err := s.ImportVarieties(ctx, []models.MicrogreenVariety{{Name: "Basil", GrowthCycleDays: 12}, {Name: "Amaranth", GrowthCycleDays: 11}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	varieties := s.Varieties()
	require.Len(t, varieties, 7)
	assert.Equal(t, "Amaranth", varieties[0].Name)
	assert.Equal(t, "Sunflower", varieties[6].Name)
}

func TestAddDeliveryMode(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	modes, err := s.AddDeliveryMode(ctx, " Bike ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Porter", "Swiggy Genie", "Tiffin", "Bike"}, modes)

	modes, err = s.AddDeliveryMode(ctx, "Bike")
	require.NoError(t, err)
	assert.Len(t, modes, 4)

	_, err = s.AddDeliveryMode(ctx, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWasteAndExpenses(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	waste, err := s.AddWaste(ctx, models.WasteLogEntry{Variety: "Peas", TraysWasted: 2, Reason: "mould"})
	require.NoError(t, err)
	assert.Equal(t, "WST-1", waste.ID)
	assert.False(t, waste.Date.IsZero())

	_, err = s.AddWaste(ctx, models.WasteLogEntry{Variety: "Peas"})
	assert.ErrorIs(t, err, ErrValidation)

	expense, err := s.AddExpense(ctx, models.DeliveryExpense{DeliveryPerson: "Ravi", Amount: 150})
	require.NoError(t, err)
	_, err = s.AddExpense(ctx, models.DeliveryExpense{DeliveryPerson: "Ravi"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Len(t, s.WasteLog(), 1)
	assert.Len(t, s.DeliveryExpenses(), 1)

	require.NoError(t, s.DeleteWaste(ctx, waste.ID))
	require.NoError(t, s.DeleteExpense(ctx, expense.ID))
	assert.ErrorIs(t, s.DeleteWaste(ctx, waste.ID), ErrNotFound)
	assert.ErrorIs(t, s.DeleteExpense(ctx, expense.ID), ErrNotFound)
}
