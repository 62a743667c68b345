package dataio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	data := models.DefaultAppData()
	delivery := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	cash := 450.0
	data.Orders = append(data.Orders, models.Order{
		ID:            "ORD-1",
		ClientName:    "Green Cafe",
		Items:         []models.OrderItem{{Variety: "Radish", Quantity: 3}},
		Status:        models.OrderCompleted,
		CreatedAt:     time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC),
		DeliveryDate:  &delivery,
		DeliveryMode:  "Porter",
		ActualHarvest: []models.OrderItem{{Variety: "Radish", Quantity: 2}},
		CashReceived:  &cash,
	})
	data.HarvestingLog["2024-04-24"] = models.HarvestLogEntry{Date: "2024-04-24", Trays: map[string]int{"Radish": 2}}

	var buf bytes.Buffer
	require.NoError(t, ExportSnapshot(&buf, data))

	got, err := ImportSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestImportSnapshotRequiresKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "orders,varieties"},
		{"array", "[]"},
		{"missing varieties", `{"orders": []}`},
		{"null orders", `{"orders": null, "microgreenVarieties": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportSnapshot(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidFile)
		})
	}
}

func TestImportSnapshotFillsMissingCollections(t *testing.T) {
	got, err := ImportSnapshot(strings.NewReader(`{"orders": [], "microgreenVarieties": [{"name": "Basil", "growthCycleDays": 12}]}`))
	require.NoError(t, err)

	assert.Equal(t, []models.MicrogreenVariety{{Name: "Basil", GrowthCycleDays: 12}}, got.MicrogreenVarieties)
	assert.NotNil(t, got.SeedInventory)
	assert.NotNil(t, got.PurchaseOrders)
	assert.NotNil(t, got.HarvestingLog)
}

func TestWriteCSVQuoting(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, Table{
		Header: []string{"client", "remarks"},
		Rows: [][]string{
			{"Green Cafe", "left at gate, paid cash"},
			{"Bistro", `said "thanks"`},
			{"Deli", "plain"},
		},
	})
	require.NoError(t, err)

	want := "client,remarks\n" +
		"Green Cafe,\"left at gate, paid cash\"\n" +
		"Bistro,\"said \"\"thanks\"\"\"\n" +
		"Deli,plain\n"
	assert.Equal(t, want, buf.String())
}
