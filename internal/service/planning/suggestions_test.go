package planning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

type fakeAdvisor struct {
	got   models.SuggestionContext
	calls int
	err   error
}

func (f *fakeAdvisor) SowingSuggestions(_ context.Context, in models.SuggestionContext) ([]models.SowingSuggestion, error) {
	f.calls++
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return []models.SowingSuggestion{{Suggestion: "Sow 5 trays of Sunflower.", Reason: "Top seller"}}, nil
}

func completedOrders(n int) []models.Order {
	orders := make([]models.Order, 0, n)
	varieties := []string{"Sunflower", "Radish", "Peas", "Broccoli", "Mustard", "Basil"}
	for i := 0; i < n; i++ {
		orders = append(orders, models.Order{
			Status: models.OrderCompleted,
			Items:  []models.OrderItem{{Variety: varieties[i%len(varieties)], Quantity: i + 1}},
		})
	}
	return orders
}

func TestBuildSuggestionContext(t *testing.T) {
	seeds := models.SeedInventory{
		"Radish":    {StockOnHand: 100, ReorderLevel: 500},
		"Broccoli":  {StockOnHand: 300, ReorderLevel: 300},
		"Sunflower": {StockOnHand: 5000, ReorderLevel: 1000},
	}

	in, ok := BuildSuggestionContext(completedOrders(6), testVarieties, seeds)
	require.True(t, ok)

	assert.Equal(t, []models.VarietySales{
		{Variety: "Basil", TotalBoxesSold: 6},
		{Variety: "Mustard", TotalBoxesSold: 5},
		{Variety: "Broccoli", TotalBoxesSold: 4},
		{Variety: "Peas", TotalBoxesSold: 3},
		{Variety: "Radish", TotalBoxesSold: 2},
	}, in.TopSellers)
	assert.Equal(t, []string{"Broccoli", "Radish"}, in.LowStockSeeds)
	assert.Equal(t, testVarieties, in.Varieties)

	_, ok = BuildSuggestionContext(completedOrders(4), testVarieties, seeds)
	assert.False(t, ok)
}

func TestSuggestions(t *testing.T) {
	advisor := &fakeAdvisor{}

	out, err := Suggestions(context.Background(), advisor, models.AppData{Orders: completedOrders(3)})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
	assert.Zero(t, advisor.calls)

	out, err = Suggestions(context.Background(), advisor, models.AppData{Orders: completedOrders(5)})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, advisor.calls)

	advisor.err = errors.New("overloaded")
	_, err = Suggestions(context.Background(), advisor, models.AppData{Orders: completedOrders(5)})
	assert.ErrorContains(t, err, "overloaded")
}
