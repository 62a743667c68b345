package planning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

type mapCache struct {
	entries map[string]models.ForecastData
	readErr error
}

func (c *mapCache) GetForecast(_ context.Context, key string) (models.ForecastData, bool, error) {
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	f, ok := c.entries[key]
	return f, ok, nil
}

func (c *mapCache) SetForecast(_ context.Context, key string, forecast models.ForecastData) error {
	c.entries[key] = forecast
	return nil
}

func TestCachedForecasterServesRepeatHistoryFromCache(t *testing.T) {
	next := &fakeForecaster{forecast: models.ForecastData{{Week: "Week 1"}}}
	cache := &mapCache{entries: map[string]models.ForecastData{}}
	cached := NewCachedForecaster(next, cache, nil)
	history := []models.HistoricalSale{{Variety: "Peas", Quantity: 2, Date: "2024-01-01"}}

	first, err := cached.Forecast(context.Background(), history)
	require.NoError(t, err)
	second, err := cached.Forecast(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Len(t, cache.entries, 1)

	_, err = cached.Forecast(context.Background(), append(history, models.HistoricalSale{Variety: "Radish", Quantity: 1, Date: "2024-01-02"}))
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedForecasterFallsThroughOnCacheError(t *testing.T) {
	next := &fakeForecaster{forecast: models.ForecastData{{Week: "Week 1"}}}
	cache := &mapCache{entries: map[string]models.ForecastData{}, readErr: errors.New("redis down")}
	cached := NewCachedForecaster(next, cache, nil)

	forecast, err := cached.Forecast(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, forecast, 1)
	assert.Equal(t, 1, next.calls)
}

func TestCachedForecasterPropagatesProviderError(t *testing.T) {
	next := &fakeForecaster{err: errors.New("boom")}
	cached := NewCachedForecaster(next, &mapCache{entries: map[string]models.ForecastData{}}, nil)

	_, err := cached.Forecast(context.Background(), nil)
	assert.EqualError(t, err, "boom")
}
