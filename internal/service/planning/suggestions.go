package planning

import (
	"context"
	"fmt"
	"sort"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const (
	// MinSuggestionOrders is the number of Completed orders the advisor needs.
	MinSuggestionOrders = 5
	topSellerLimit      = 5
)

// SuggestionProvider produces advisory sowing actions.
type SuggestionProvider interface {
	SowingSuggestions(ctx context.Context, in models.SuggestionContext) ([]models.SowingSuggestion, error)
}

// BuildSuggestionContext summarises top sellers, low-stock seeds and growth cycles. ok is false
// when fewer than MinSuggestionOrders orders are Completed.
func BuildSuggestionContext(orders []models.Order, varieties []models.MicrogreenVariety, seeds models.SeedInventory) (models.SuggestionContext, bool) {
	completed := 0
	sales := make(map[string]int)
	for _, order := range orders {
		if order.Status != models.OrderCompleted {
			continue
		}
		completed++
		for _, item := range order.Items {
			sales[item.Variety] += item.Quantity
		}
	}
	if completed < MinSuggestionOrders {
		return models.SuggestionContext{}, false
	}

	top := make([]models.VarietySales, 0, len(sales))
	for v, n := range sales {
		top = append(top, models.VarietySales{Variety: v, TotalBoxesSold: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].TotalBoxesSold != top[j].TotalBoxesSold {
			return top[i].TotalBoxesSold > top[j].TotalBoxesSold
		}
		return top[i].Variety < top[j].Variety
	})
	if len(top) > topSellerLimit {
		top = top[:topSellerLimit]
	}

	low := make([]string, 0)
	for name, item := range seeds {
		if item.BelowReorder() {
			low = append(low, name)
		}
	}
	sort.Strings(low)

	return models.SuggestionContext{
		TopSellers:    top,
		LowStockSeeds: low,
		Varieties:     append([]models.MicrogreenVariety{}, varieties...),
	}, true
}

// Suggestions asks the advisor for sowing actions. It returns an empty list without calling
// the provider when there is not enough sales history.
func Suggestions(ctx context.Context, provider SuggestionProvider, data models.AppData) ([]models.SowingSuggestion, error) {
	in, ok := BuildSuggestionContext(data.Orders, data.MicrogreenVarieties, data.SeedInventory)
	if !ok || provider == nil {
		return []models.SowingSuggestion{}, nil
	}
	out, err := provider.SowingSuggestions(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("sowing suggestions: %w", err)
	}
	if out == nil {
		out = []models.SowingSuggestion{}
	}
	return out, nil
}
