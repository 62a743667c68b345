package planning

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// ForecastCache stores forecasts by a key derived from their input history.
type ForecastCache interface {
	GetForecast(ctx context.Context, key string) (models.ForecastData, bool, error)
	SetForecast(ctx context.Context, key string, forecast models.ForecastData) error
}

// CachedForecaster serves repeated forecasts for an unchanged sales history from a cache.
// Cache errors are logged and fall through to the wrapped provider.
type CachedForecaster struct {
	next   ForecastProvider
	cache  ForecastCache
	logger *zap.Logger
}

var _ ForecastProvider = (*CachedForecaster)(nil)

// NewCachedForecaster wraps next with cache.
func NewCachedForecaster(next ForecastProvider, cache ForecastCache, logger *zap.Logger) *CachedForecaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedForecaster{next: next, cache: cache, logger: logger}
}

// Forecast implements ForecastProvider.
func (c *CachedForecaster) Forecast(ctx context.Context, history []models.HistoricalSale) (models.ForecastData, error) {
	key, err := forecastKey(history)
	if err != nil {
		return nil, err
	}

	cached, ok, err := c.cache.GetForecast(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("forecast cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		c.logger.Debug("forecast cache hit", zap.String("key", key))
		return cached, nil
	}

	forecast, err := c.next.Forecast(ctx, history)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetForecast(ctx, key, forecast); err != nil {
		c.logger.Warn("forecast cache write failed", zap.String("key", key), zap.Error(err))
	}
	return forecast, nil
}

func forecastKey(history []models.HistoricalSale) (string, error) {
	payload, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encode forecast history: %w", err)
	}
	sum := sha256.Sum256(payload)
	return "forecast:" + hex.EncodeToString(sum[:]), nil
}
