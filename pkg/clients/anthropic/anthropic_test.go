package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

func serve(t *testing.T, status int, text string, seen *messageRequest) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		body, _ := json.Marshal(map[string]any{"content": []map[string]string{{"type": "text", "text": text}}})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return NewClient("key", "", WithEndpoint(srv.URL))
}

func TestForecast(t *testing.T) {
	var seen messageRequest
	client := serve(t, http.StatusOK, `{"week":"Week 1","predictions":[{"variety":"Radish","quantity":12}]}]`, &seen)

	forecast, err := client.Forecast(context.Background(), []models.HistoricalSale{{Variety: "Radish", Quantity: 3, Date: "2024-05-01"}})
	require.NoError(t, err)

	assert.Equal(t, models.ForecastData{{Week: "Week 1", Predictions: []models.WeeklyForecastPrediction{{Variety: "Radish", Quantity: 12}}}}, forecast)
	assert.Equal(t, defaultModel, seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "[", seen.Messages[1].Content)
	assert.Contains(t, seen.Messages[0].Content, `"variety":"Radish"`)
}

func TestSowingSuggestionsStripsFences(t *testing.T) {
	client := serve(t, http.StatusOK, "```json\n[{\"suggestion\":\"Sow 5 trays of Sunflower.\",\"reason\":\"Top seller\"}]\n```", nil)

	out, err := client.SowingSuggestions(context.Background(), models.SuggestionContext{LowStockSeeds: []string{"Radish"}})
	require.NoError(t, err)
	assert.Equal(t, []models.SowingSuggestion{{Suggestion: "Sow 5 trays of Sunflower.", Reason: "Top seller"}}, out)
}

func TestCompleteJSONErrors(t *testing.T) {
	client := serve(t, http.StatusTooManyRequests, "slow down", nil)
	_, err := client.Forecast(context.Background(), nil)
	assert.ErrorContains(t, err, "status 429")

	client = serve(t, http.StatusOK, "not json", nil)
	_, err = client.Forecast(context.Background(), nil)
	assert.ErrorContains(t, err, "decode ai response")
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `[1]`, cleanJSON("[```json\n[1]\n```"))
	assert.Equal(t, `[1]`, cleanJSON("```\n[1]```"))
	assert.Equal(t, `[1]`, cleanJSON(" [1] "))
}
